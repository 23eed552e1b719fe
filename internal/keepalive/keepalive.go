// Package keepalive runs the periodic ping that keeps the database connection and hosting
// instance warm.
package keepalive

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Config configures a Scheduler.
type Config struct {
	Schedule string
	URL      string
	Timeout  time.Duration
}

// Scheduler owns the cron runner for the keep-alive job.
type Scheduler struct {
	cron    *cron.Cron
	cfg     Config
	db      Pinger
	client  *http.Client
	logger  *zap.Logger
	baseCtx context.Context
}

// New validates the schedule and builds a stopped scheduler.
func New(cfg Config, db Pinger, logger *zap.Logger) (*Scheduler, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("keepalive schedule %q: %w", cfg.Schedule, err)
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DefaultLogger))),
		cfg:    cfg,
		db:     db,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// Start registers the job and starts the runner. Jobs stop receiving new runs once ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.Run); err != nil {
		return fmt.Errorf("add keepalive job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("keepalive scheduler started", zap.String("schedule", s.cfg.Schedule))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Run performs one keep-alive round.
func (s *Scheduler) Run() {
	parent := s.baseCtx
	if parent == nil {
		parent = context.Background()
	}
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("keepalive database ping failed", zap.Error(err))
		} else {
			s.logger.Debug("keepalive database ping ok")
		}
	}

	if s.cfg.URL == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		s.logger.Warn("keepalive request", zap.Error(err))
		return
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("keepalive http ping failed", zap.String("url", s.cfg.URL), zap.Error(err))
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Warn("keepalive http ping status", zap.String("url", s.cfg.URL), zap.Int("status", resp.StatusCode))
	}
}
