package conn

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Keepalive pings every connected transport on a fixed interval so idle
// sessions are not dropped by intermediaries. It is not a reconnect policy:
// a transport that fails its ping dies through the normal error path.
type Keepalive struct {
	scheduler gocron.Scheduler
	manager   *Manager
	running   bool
}

// NewKeepalive creates a keepalive scheduler for the manager.
func NewKeepalive(manager *Manager) (*Keepalive, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Keepalive{
		scheduler: scheduler,
		manager:   manager,
	}, nil
}

// Start begins pinging at the given interval.
func (k *Keepalive) Start(interval time.Duration) error {
	if k.running {
		return fmt.Errorf("keepalive is already running")
	}

	_, err := k.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			k.manager.PingAll()
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create keepalive job: %w", err)
	}

	k.scheduler.Start()
	k.running = true
	return nil
}

// Stop shuts the scheduler down.
func (k *Keepalive) Stop() error {
	if !k.running {
		return nil
	}
	k.running = false
	return k.scheduler.Shutdown()
}
