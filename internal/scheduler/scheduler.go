package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/digest"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/dispatcher"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/notifier"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/plan"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/recorder"
)

// ErrNoMilestone is returned when an outcome is reported for an
// application the plan does not track.
var ErrNoMilestone = errors.New("no application milestone")

// Scheduler manages all cron tasks and routes chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Catalog      digest.Catalog
	Plan         *plan.Store
	Digest       *digest.Builder
	Notifier     notifier.Notifier
	Recorder     recorder.Recorder
	Policy       dispatcher.Policy
	ReminderDays int
	Now          func() time.Time
	Ctx          context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, catalog digest.Catalog, store *plan.Store, builder *digest.Builder,
	n notifier.Notifier, rec recorder.Recorder, pol dispatcher.Policy, reminderDays int) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Catalog:      catalog,
		Plan:         store,
		Digest:       builder,
		Notifier:     n,
		Recorder:     rec,
		Policy:       pol,
		ReminderDays: reminderDays,
		Now:          time.Now,
		Ctx:          ctx,
	}
}

// RegisterAll registers the deadline, liquidity, and digest tasks.
func (s *Scheduler) RegisterAll(deadlineCron, liquidityCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(deadlineCron, s.deadlineTask); err != nil {
		return fmt.Errorf("register deadline task: %w", err)
	}
	if _, err := s.Cron.AddFunc(liquidityCron, s.liquidityTask); err != nil {
		return fmt.Errorf("register liquidity task: %w", err)
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunDigestNow executes the digest task immediately (for RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) deadlineTask() {
	log.Println("[INFO] running deadline check")
	now := s.Now()
	due := s.upcomingDeadlines(now)
	if len(due) == 0 {
		return
	}
	s.trySend(notifier.FormatDeadlines(due, now))
}

// upcomingDeadlines returns live apply and point purchase actions due
// within the reminder window.
func (s *Scheduler) upcomingDeadlines(now time.Time) []model.RoadmapAction {
	horizon := now.AddDate(0, 0, s.ReminderDays)
	var due []model.RoadmapAction
	for _, y := range s.Plan.State().Roadmap {
		for _, a := range y.Actions {
			if a.Stale || a.DueDate == nil {
				continue
			}
			if a.Type != model.ActionApply && a.Type != model.ActionBuyPoints {
				continue
			}
			if a.DueDate.Before(now) || a.DueDate.After(horizon) {
				continue
			}
			due = append(due, a)
		}
	}
	return due
}

func (s *Scheduler) liquidityTask() {
	log.Println("[INFO] running liquidity check")
	year := s.Now().Year()
	d := s.Digest.Build(s.Plan.State(), year)
	if err := s.Recorder.RecordLiquidity(year, &d.Liquidity); err != nil {
		log.Printf("[ERROR] record liquidity: %v", err)
	}
	if d.Liquidity.Severity == model.SeverityOK {
		return
	}
	s.trySend(notifier.FormatLiquidity(year, &d.Liquidity))
}

func (s *Scheduler) digestTask() {
	log.Println("[INFO] running odds digest")
	year := s.Now().Year()
	d := s.Digest.Build(s.Plan.State(), year)
	s.trySend(notifier.FormatDigest(&d))

	if err := s.Recorder.RecordDigest(&d); err != nil {
		log.Printf("[ERROR] record digest: %v", err)
	}
	if err := s.Recorder.RecordLiquidity(year, &d.Liquidity); err != nil {
		log.Printf("[ERROR] record liquidity: %v", err)
	}
}

// ReportOutcome runs the cascade for a reported draw result and commits it
// to the plan.
func (s *Scheduler) ReportOutcome(key model.Key, year int, outcome model.DrawOutcome) (model.CascadeResult, error) {
	snap := s.Plan.Snapshot()
	m, ok := dispatcher.FindMilestone(snap.Milestones, key, model.ActionApply, year)
	if !ok {
		return model.CascadeResult{}, fmt.Errorf("%s %d: %w", key, year, ErrNoMilestone)
	}
	if m.Outcome != model.OutcomePending {
		return model.CascadeResult{}, fmt.Errorf("%s %d is %s: %w", key, year, m.Outcome, plan.ErrAlreadyResolved)
	}

	c, err := dispatcher.Dispatch(s.Catalog, snap, dispatcher.DrawResult{Milestone: m, Outcome: outcome}, s.Policy)
	if err != nil {
		return model.CascadeResult{}, fmt.Errorf("dispatch: %w", err)
	}
	if err := s.Plan.Apply(c); err != nil {
		return model.CascadeResult{}, fmt.Errorf("apply cascade: %w", err)
	}
	if err := s.Recorder.RecordCascade(&c); err != nil {
		log.Printf("[ERROR] record cascade: %v", err)
	}
	return c, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string, args []string) string {
	switch command {
	case "/odds":
		year, err := yearArg(args, 0, s.Now().Year())
		if err != nil {
			return plain("%v", err)
		}
		d := s.Digest.Build(s.Plan.State(), year)
		return notifier.FormatDigest(&d)
	case "/liquidity":
		year, err := yearArg(args, 0, s.Now().Year())
		if err != nil {
			return plain("%v", err)
		}
		d := s.Digest.Build(s.Plan.State(), year)
		return notifier.FormatLiquidity(year, &d.Liquidity)
	case "/points":
		return notifier.FormatPoints(s.Plan.State().Points)
	case "/alerts":
		alerts, err := s.Recorder.RecentAlerts(10)
		if err != nil {
			log.Printf("[ERROR] load alerts: %v", err)
			return plain("❌ could not load alerts")
		}
		return notifier.FormatAlerts(alerts)
	case "/drew", "/nodraw":
		outcome := model.OutcomeDrew
		if command == "/nodraw" {
			outcome = model.OutcomeDidntDraw
		}
		key, year, err := targetArgs(args)
		if err != nil {
			return plain("usage: %s <STATE> <species> <year>", command)
		}
		c, err := s.ReportOutcome(key, year, outcome)
		if err != nil {
			log.Printf("[WARN] %s %s %d: %v", command, key, year, err)
			return plain("❌ %v", err)
		}
		return notifier.FormatCascade(&c)
	case "/bought":
		key, year, err := targetArgs(args)
		if err != nil || len(args) < 4 {
			return plain("usage: /bought <STATE> <species> <year> <fee>")
		}
		fee, err := decimal.NewFromString(args[3])
		if err != nil {
			return plain("❌ bad fee %q", args[3])
		}
		p, err := s.Plan.RecordPointPurchase(key, year, fee)
		if err != nil {
			log.Printf("[ERROR] record point purchase: %v", err)
			return plain("❌ %v", err)
		}
		return plain("✅ %s %s now holds %d points", p.StateID, p.Species, p.Points)
	case "/applied":
		key, year, err := targetArgs(args)
		if err != nil || len(args) < 4 {
			return plain("usage: /applied <STATE> <species> <year> <amount>")
		}
		amount, err := decimal.NewFromString(args[3])
		if err != nil {
			return plain("❌ bad amount %q", args[3])
		}
		m, ok := dispatcher.FindMilestone(s.Plan.State().Milestones, key, model.ActionApply, year)
		if !ok {
			return plain("❌ %s %d: %v", key, year, ErrNoMilestone)
		}
		if _, err := s.Plan.FloatApplication(m, amount); err != nil {
			log.Printf("[ERROR] float application: %v", err)
			return plain("❌ %v", err)
		}
		return plain("✅ floated $%s for %s %d", amount.StringFixed(0), key, year)
	default:
		return plain("Commands:\n" +
			"• /odds [year]\n" +
			"• /liquidity [year]\n" +
			"• /points\n" +
			"• /alerts\n" +
			"• /drew <STATE> <species> <year>\n" +
			"• /nodraw <STATE> <species> <year>\n" +
			"• /bought <STATE> <species> <year> <fee>\n" +
			"• /applied <STATE> <species> <year> <amount>")
	}
}

// plain formats a reply that carries no markup, escaping any user input.
func plain(format string, args ...any) string {
	return notifier.Escape(fmt.Sprintf(format, args...))
}

func yearArg(args []string, i, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	y, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("bad year %q", args[i])
	}
	return y, nil
}

func targetArgs(args []string) (model.Key, int, error) {
	if len(args) < 3 {
		return model.Key{}, 0, fmt.Errorf("need state, species and year")
	}
	year, err := strconv.Atoi(args[2])
	if err != nil {
		return model.Key{}, 0, fmt.Errorf("bad year %q", args[2])
	}
	key := model.Key{StateID: strings.ToUpper(args[0]), Species: strings.ToLower(args[1])}
	return key, year, nil
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
