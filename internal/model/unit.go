package model

// Unit is a huntable area for one species within a state.
// SuccessRate and TrophyRate only feed explanatory text.
type Unit struct {
	ID                        string  `json:"id" yaml:"id"`
	StateID                   string  `json:"state_id" yaml:"state"`
	Species                   string  `json:"species" yaml:"species"`
	Name                      string  `json:"name" yaml:"name"`
	RequiredPointsResident    float64 `json:"required_points_resident" yaml:"required_points_resident"`
	RequiredPointsNonresident float64 `json:"required_points_nonresident" yaml:"required_points_nonresident"`
	TagQuota                  int     `json:"tag_quota" yaml:"tag_quota"`
	Applicants                int     `json:"applicants,omitempty" yaml:"applicants"`
	SuccessRate               float64 `json:"success_rate,omitempty" yaml:"success_rate"`
	TrophyRate                float64 `json:"trophy_rate,omitempty" yaml:"trophy_rate"`
}

// RequiredPoints picks the threshold for the hunter's residency.
func (u Unit) RequiredPoints(resident bool) float64 {
	if resident {
		return u.RequiredPointsResident
	}
	return u.RequiredPointsNonresident
}
