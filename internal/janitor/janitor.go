// Package janitor periodically drops idle weather workflows and expired
// storage rows.
package janitor

import (
	"context"
	"log"
	"time"

	"github.com/benpsk/weather-gate/internal/weather"
	"github.com/go-co-op/gocron"
)

// Purger deletes expired storage items. Storage backends whose items expire
// on their own do not implement it.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type Janitor struct {
	scheduler *gocron.Scheduler
	registry  *weather.Registry
	purger    Purger
	interval  time.Duration
	now       func() time.Time
}

// New builds a Janitor. purger may be nil.
func New(interval time.Duration, registry *weather.Registry, purger Purger) *Janitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Janitor{
		scheduler: s,
		registry:  registry,
		purger:    purger,
		interval:  interval,
		now:       time.Now,
	}
}

func (j *Janitor) Start() error {
	_, err := j.scheduler.Every(j.interval).WaitForSchedule().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, _, err := j.RunOnce(ctx); err != nil {
			log.Printf("janitor: %v", err)
		}
	})
	if err != nil {
		return err
	}
	j.scheduler.StartAsync()
	log.Printf("janitor: running every %s", j.interval)
	return nil
}

func (j *Janitor) Stop() {
	if j.scheduler != nil {
		j.scheduler.Stop()
	}
}

// RunOnce sweeps idle workflows and purges expired storage.
func (j *Janitor) RunOnce(ctx context.Context) (swept int, purged int64, err error) {
	if j.registry != nil {
		swept = j.registry.Sweep(j.now())
	}
	if j.purger != nil {
		purged, err = j.purger.PurgeExpired(ctx)
	}
	if swept > 0 || purged > 0 {
		log.Printf("janitor: swept %d workflows, purged %d storage items", swept, purged)
	}
	return swept, purged, err
}
