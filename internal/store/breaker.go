package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/activity-heatmap/internal/common"
	"github.com/i474232898/activity-heatmap/internal/heatmap"
)

var (
	// ErrUnavailable is returned while the breaker is open and writes are skipped.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrStorageFull marks write failures caused by exhausted or read-only storage.
	ErrStorageFull = errors.New("storage full")
)

// BreakerConfig controls when repeated write failures stop reaching the backend.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failed writes that opens the breaker.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before letting a trial write through.
	Timeout time.Duration
}

// BreakerStore wraps a store so that a persistently failing backend is not
// hammered on every click. Reads always go to the backend.
type BreakerStore struct {
	next    heatmap.KV
	circuit *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps next with a circuit breaker around Set and Delete.
func NewBreakerStore(next heatmap.KV, cfg BreakerConfig, log *zap.SugaredLogger) *BreakerStore {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log = log.Named("store")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kv-writes",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("store breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerStore{
		next:    next,
		circuit: cb,
	}
}

// Get reads from the backend.
func (s *BreakerStore) Get(key string) (string, bool, error) {
	return s.next.Get(key)
}

// Keys reads from the backend.
func (s *BreakerStore) Keys() ([]string, error) {
	return s.next.Keys()
}

// Set writes through the breaker.
func (s *BreakerStore) Set(key, value string) error {
	return s.execute(func() error { return s.next.Set(key, value) })
}

// Delete removes through the breaker.
func (s *BreakerStore) Delete(key string) error {
	return s.execute(func() error { return s.next.Delete(key) })
}

// State exposes the breaker state, mostly for health reporting.
func (s *BreakerStore) State() string {
	return s.circuit.State().String()
}

func (s *BreakerStore) execute(op func() error) error {
	_, err := s.circuit.Execute(func() (interface{}, error) {
		return nil, op()
	})
	if err == nil {
		return nil
	}

	// If circuit is open, the write was never attempted.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if common.HasAny(err.Error(), "no space left", "quota", "read-only file system", "disk full") {
		return fmt.Errorf("%w: %w", ErrStorageFull, err)
	}
	return err
}
