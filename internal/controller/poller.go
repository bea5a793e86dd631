package controller

import (
	"context"
	"sync"
	"time"

	"github.com/kavia-common/netwatch/internal/gateway"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/store"
)

// DefaultPollInterval matches the 15 second refresh the device view
// was designed around.
const DefaultPollInterval = 15 * time.Second

// Poller periodically fetches every device's status and merges the
// results into the store. Poll failures are dropped and the schedule
// continues; staleness beats interrupting the user with transient
// network noise.
type Poller struct {
	gw       gateway.API
	store    *store.Store
	interval time.Duration
}

// PollHandle cancels a running poller. Stop is idempotent and does not
// cancel a request already in flight.
type PollHandle struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func (h *PollHandle) Stop() {
	h.once.Do(h.cancel)
}

// Done is closed once the poll loop has exited.
func (h *PollHandle) Done() <-chan struct{} {
	return h.done
}

func NewPoller(gw gateway.API, st *store.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{gw: gw, store: st, interval: interval}
}

// Start begins polling on a fixed ticker and returns the stop handle.
func (p *Poller) Start() *PollHandle {
	ctx, cancel := context.WithCancel(context.Background())
	handle := &PollHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(handle.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll()
			}
		}
	}()

	log.Debug("Status poller started", "interval", p.interval)
	return handle
}

// poll runs one status fetch on a fresh context: cancelling the poller
// only stops future scheduling, so a request already in flight runs to
// completion and its merge still lands.
func (p *Poller) poll() {
	updates, err := p.gw.Statuses(context.Background())
	if err != nil {
		// Best effort: skip this cycle, next tick retries.
		log.Debug("Status poll skipped", "error", err)
		return
	}
	p.store.MergeStatuses(updates)
	log.Debug("Statuses merged", "count", len(updates))
}
