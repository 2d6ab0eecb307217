package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"proplookup/config"
	"proplookup/models"
	"proplookup/services"
	"proplookup/storage"
)

// Triggerable allows workers to be triggered manually via commands.
type Triggerable interface {
	Trigger()
}

// Scheduler drives the periodic refresh and drains the SQLite command
// queue the dashboard writes into.
type Scheduler struct {
	cfg       *config.Config
	aggregate *services.AggregateService
	agencies  *services.AgencyService
	ops       *storage.SQLiteStore
	cron      *cron.Cron
	ticker    *time.Ticker
	stopCh    chan struct{}

	mu     sync.Mutex
	paused bool

	siteCheckWorker Triggerable
	wpProbeWorker   Triggerable
}

func New(cfg *config.Config, aggregate *services.AggregateService, agencies *services.AgencyService, ops *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		aggregate: aggregate,
		agencies:  agencies,
		ops:       ops,
		cron:      cron.New(),
		stopCh:    make(chan struct{}),
	}
}

// SetWorkers registers the background workers commands can trigger.
func (s *Scheduler) SetWorkers(siteCheck, wpProbe Triggerable) {
	s.siteCheckWorker = siteCheck
	s.wpProbeWorker = wpProbe
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.runCycle(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runCycle(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if s.isPaused() {
		log.Println("Scheduler paused, skipping refresh cycle")
		return
	}
	if err := s.aggregate.RefreshAll(ctx); err != nil {
		log.Printf("Scheduled refresh error: %v", err)
	}
}

func (s *Scheduler) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Scheduler) setPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.ops.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.ops.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdRefreshNow:
		return s.aggregate.RefreshAll(ctx)
	case models.CmdRefreshAgency:
		params, err := s.ops.ParseCommandParams(cmd)
		if err != nil {
			return fmt.Errorf("bad params: %w", err)
		}
		ag, err := s.agencies.ResolveByKey(ctx, params.AgencyKey)
		if err != nil {
			return err
		}
		_, err = s.aggregate.RefreshAgency(ctx, ag, services.ParseSources(params.Sources))
		return err
	case models.CmdPause:
		s.setPaused(true)
		log.Println("Refresh schedule paused")
		return nil
	case models.CmdResume:
		s.setPaused(false)
		log.Println("Refresh schedule resumed")
		return nil
	case models.CmdRunSiteCheck:
		if s.siteCheckWorker != nil {
			s.siteCheckWorker.Trigger()
			log.Println("Site check worker triggered via command")
		}
		return nil
	case models.CmdRunWPProbe:
		if s.wpProbeWorker != nil {
			s.wpProbeWorker.Trigger()
			log.Println("WordPress probe worker triggered via command")
		}
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}

func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.aggregate.RefreshAll(ctx)
}
