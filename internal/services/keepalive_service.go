package services

import (
	"context"
	"sync"
	"time"
)

// KeepAliveInterval is the period of the keep-alive tick.
const KeepAliveInterval = 20 * time.Second

// KeepAliveService runs a periodic no-op tick while the service is up.
// Start and Stop are idempotent.
type KeepAliveService struct {
	interval time.Duration
	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	lastTick time.Time
}

func NewKeepAliveService(interval time.Duration) *KeepAliveService {
	if interval <= 0 {
		interval = KeepAliveInterval
	}
	return &KeepAliveService{interval: interval}
}

// Start begins ticking. It is a no-op when already running.
func (s *KeepAliveService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer s.exited(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				s.mu.Lock()
				s.lastTick = t
				s.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the ticker and waits for it to exit. It is a no-op when not
// running.
func (s *KeepAliveService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done
}

// exited clears the running state when the parent context ends the ticker.
func (s *KeepAliveService) exited(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.cancel()
	s.running = false
	s.cancel = nil
	s.done = nil
}

func (s *KeepAliveService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastTick returns the time of the most recent tick, zero before the first.
func (s *KeepAliveService) LastTick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTick
}
