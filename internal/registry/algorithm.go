package registry

// Tag is the registry-file name of a draw algorithm.
type Tag string

const (
	TagPreference   Tag = "preference"
	TagHybrid       Tag = "hybrid"
	TagBonus        Tag = "bonus"
	TagBonusSquared Tag = "bonus_squared"
	TagDual         Tag = "dual"
	TagRandom       Tag = "random"
	TagPreferenceNR Tag = "preference_nr"
)

// Algorithm is one state's tag allocation scheme. The set of variants is
// closed: every implementation lives in this file.
type Algorithm interface {
	Tag() Tag
	algorithm()
}

// Preference: applicants at or above the required points share PoolPct of
// the tags; everyone else only has the residual random chance.
type Preference struct {
	PoolPct      float64 // 0 ~ 100
	ResidualOdds float64 // 0.0 ~ 1.0
}

// Hybrid splits tags between a preference pool and a random pool.
type Hybrid struct {
	PreferencePct float64
	RandomPct     float64
}

// Bonus weights each application by points+1.
type Bonus struct {
	ApplicantsPerTag int
}

// BonusSquared weights each application by (points+1)^2.
type BonusSquared struct {
	ApplicantsPerTag int
}

// Dual runs preference for the general pool while bonus points accrue on
// the side. The bonus side is not modeled.
type Dual struct {
	PreferencePct float64
	ResidualOdds  float64
}

// Random ignores points entirely.
type Random struct {
	ApplicantsPerTag int
}

// PreferenceNR is a nonresident-only preference threshold.
type PreferenceNR struct {
	HighOdds float64
	LowOdds  float64
}

// Unknown keeps a tag the engine does not model so lookups still resolve.
type Unknown struct {
	Name string
}

func (Preference) Tag() Tag   { return TagPreference }
func (Hybrid) Tag() Tag       { return TagHybrid }
func (Bonus) Tag() Tag        { return TagBonus }
func (BonusSquared) Tag() Tag { return TagBonusSquared }
func (Dual) Tag() Tag         { return TagDual }
func (Random) Tag() Tag       { return TagRandom }
func (PreferenceNR) Tag() Tag { return TagPreferenceNR }
func (u Unknown) Tag() Tag    { return Tag(u.Name) }

func (Preference) algorithm()   {}
func (Hybrid) algorithm()       {}
func (Bonus) algorithm()        {}
func (BonusSquared) algorithm() {}
func (Dual) algorithm()         {}
func (Random) algorithm()       {}
func (PreferenceNR) algorithm() {}
func (Unknown) algorithm()      {}

// Default parameters used when the registry file leaves a field blank.
const (
	defaultPoolPct          = 75
	defaultResidualOdds     = 0.02
	defaultHybridPrefPct    = 80
	defaultHybridRandomPct  = 20
	defaultApplicantsPerTag = 20
	defaultNRHighOdds       = 0.9
	defaultNRLowOdds        = 0.05
)

// buildAlgorithm turns a raw tag plus parameters into its variant.
func buildAlgorithm(r rawState) Algorithm {
	switch Tag(r.Algorithm) {
	case TagPreference:
		return Preference{
			PoolPct:      orFloat(r.PreferencePct, defaultPoolPct),
			ResidualOdds: orFloat(r.ResidualOdds, defaultResidualOdds),
		}
	case TagHybrid:
		return Hybrid{
			PreferencePct: orFloat(r.PreferencePct, defaultHybridPrefPct),
			RandomPct:     orFloat(r.RandomPct, defaultHybridRandomPct),
		}
	case TagBonus:
		return Bonus{ApplicantsPerTag: orInt(r.ApplicantsPerTag, defaultApplicantsPerTag)}
	case TagBonusSquared:
		return BonusSquared{ApplicantsPerTag: orInt(r.ApplicantsPerTag, defaultApplicantsPerTag)}
	case TagDual:
		return Dual{
			PreferencePct: orFloat(r.PreferencePct, defaultPoolPct),
			ResidualOdds:  orFloat(r.ResidualOdds, defaultResidualOdds),
		}
	case TagRandom:
		return Random{ApplicantsPerTag: orInt(r.ApplicantsPerTag, defaultApplicantsPerTag)}
	case TagPreferenceNR:
		return PreferenceNR{
			HighOdds: orFloat(r.HighOdds, defaultNRHighOdds),
			LowOdds:  orFloat(r.LowOdds, defaultNRLowOdds),
		}
	default:
		return Unknown{Name: r.Algorithm}
	}
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
