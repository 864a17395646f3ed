// Package scheduler drives periodic indicator refreshes and answers bot
// commands.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockScope/internal/batch"
	"StockScope/internal/notifier"
	"StockScope/internal/pipeline"
)

// Runner executes one fetch-and-compute pass.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*batch.Result, error)
}

// Sender delivers a rendered report.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options configures the refresh job.
type Options struct {
	Symbols      []string
	LookbackDays int
	TrimWarmup   bool
	// Range resolves the refresh window; nil means the LookbackDays before now.
	Range func(now time.Time) (start, end time.Time, err error)
}

// Snapshot is the outcome of the most recent refresh.
type Snapshot struct {
	Result *batch.Result
	Start  time.Time
	End    time.Time
	At     time.Time
}

// Scheduler manages the cron refresh task and the latest snapshot.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline Runner
	Notifier Sender // nil disables delivery
	Ctx      context.Context

	opts Options
	now  func() time.Time
	log  zerolog.Logger

	mu     sync.RWMutex
	latest *Snapshot
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p Runner, sender Sender, opts Options, log zerolog.Logger) *Scheduler {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 365
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Notifier: sender,
		Ctx:      ctx,
		opts:     opts,
		now:      time.Now,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the refresh task. An empty cron expression registers nothing.
func (s *Scheduler) Register(refreshCron string) error {
	if refreshCron == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(refreshCron, func() {
		if _, err := s.Refresh(s.Ctx, "cron"); err != nil {
			s.log.Error().Err(err).Msg("scheduled refresh")
		}
	}); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// Latest returns the most recent refresh, nil before the first one.
func (s *Scheduler) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Range resolves the configured date range relative to now.
func (s *Scheduler) Range() (start, end time.Time, err error) {
	now := s.now()
	if s.opts.Range != nil {
		return s.opts.Range(now)
	}
	return now.AddDate(0, 0, -s.opts.LookbackDays), now, nil
}

// Refresh recomputes the configured symbols, stores the snapshot and
// delivers the report.
func (s *Scheduler) Refresh(ctx context.Context, trigger string) (*Snapshot, error) {
	start, end, err := s.Range()
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("trigger", trigger).Strs("symbols", s.opts.Symbols).Msg("running refresh")

	res, err := s.Pipeline.Run(ctx, pipeline.Request{
		Symbols: s.opts.Symbols,
		Start:   start,
		End:     end,
		Trigger: trigger,
	})
	if err != nil {
		s.trySend(ctx, fmt.Sprintf("❌ refresh failed: %v", err))
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if s.opts.TrimWarmup {
		res = res.TrimWarmup()
	}

	snap := &Snapshot{Result: res, Start: start, End: end, At: s.now()}
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	s.trySend(ctx, notifier.FormatReport(res, start, end))
	return snap, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	cmd, err := notifier.ParseCommand(text)
	if err != nil {
		return err.Error()
	}
	switch cmd.Name {
	case notifier.CmdReport:
		start, end, err := s.Range()
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		res, err := s.Pipeline.Run(ctx, pipeline.Request{Symbols: s.opts.Symbols, Start: start, End: end, Trigger: "command"})
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatReport(res, start, end)
	case notifier.CmdInd:
		end := cmd.End
		if end.IsZero() {
			end = s.now()
		}
		start := cmd.Start
		if start.IsZero() {
			start = end.AddDate(0, 0, -s.opts.LookbackDays)
		}
		res, err := s.Pipeline.Run(ctx, pipeline.Request{Symbols: []string{cmd.Symbol}, Start: start, End: end, Trigger: "command"})
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatReport(res, start, end)
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
