package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pep299/company-summarizer/internal/logging"
)

const cleanupTimeout = 5 * time.Minute

// Janitor periodically removes expired cache entries
type Janitor struct {
	ctx     context.Context
	cron    *cron.Cron
	spec    string
	manager *Manager
	logger  logging.Logger
}

// NewJanitor creates a janitor running on the given cron spec
func NewJanitor(ctx context.Context, manager *Manager, spec string, logger logging.Logger) *Janitor {
	return &Janitor{
		ctx:     ctx,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		spec:    spec,
		manager: manager,
		logger:  logger,
	}
}

// Start schedules the sweep and starts the scheduler
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.sweep); err != nil {
		return fmt.Errorf("scheduling cache cleanup: %w", err)
	}

	j.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(j.ctx, cleanupTimeout)
	defer cancel()

	if ctx.Err() != nil {
		return
	}

	removed, err := j.manager.Cleanup(ctx)
	if err != nil {
		j.logger.Errorf("Cache cleanup failed: %v", err)
		return
	}

	if removed > 0 {
		j.logger.Infof("Removed %d expired cache entries", removed)
	}
}
