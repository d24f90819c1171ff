package core

import (
	"context"
	"sync"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/NomicFoundation/hardhat-sub012/internal/utils"
)

// ErrServiceStopped is returned for requests submitted to, or still queued
// in, a stopped TxPoolService.
var ErrServiceStopped = errors.New("transaction pool service stopped")

const servicePollTimeout = 100 * time.Millisecond

type poolRequest struct {
	ctx  context.Context
	fn   func(*TxPool) error
	done chan error
}

// TxPoolService serializes access to a TxPool: every request runs on a
// single worker goroutine in submission order.
type TxPoolService struct {
	pool     *TxPool
	requests *queue.Queue

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	stopped   chan struct{}

	logger zerolog.Logger
}

// NewTxPoolService wraps pool. Call Start before submitting requests.
func NewTxPoolService(pool *TxPool) *TxPoolService {
	return &TxPoolService{
		pool:     pool,
		requests: queue.New(0),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
		logger:   utils.Logger().With().Str("module", "txpool-service").Logger(),
	}
}

// Start launches the worker goroutine.
func (s *TxPoolService) Start() {
	s.startOnce.Do(func() {
		go s.loop()
		s.logger.Info().Msg("Transaction pool service started")
	})
}

// Stop disposes the request queue and waits for the worker to exit. Requests
// that were not picked up yet fail with ErrServiceStopped.
func (s *TxPoolService) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		for _, item := range s.requests.Dispose() {
			item.(*poolRequest).done <- ErrServiceStopped
		}
		// unblock Stop when Start was never called
		s.startOnce.Do(func() { close(s.stopped) })
		<-s.stopped
		s.logger.Info().Msg("Transaction pool service stopped")
	})
}

// Do runs fn against the pool on the worker goroutine and returns its error.
// It returns ctx.Err() if ctx is done before fn completes; fn still runs
// to completion in that case unless it observes ctx itself.
func (s *TxPoolService) Do(ctx context.Context, fn func(*TxPool) error) error {
	req := &poolRequest{ctx: ctx, fn: fn, done: make(chan error, 1)}
	if err := s.requests.Put(req); err != nil {
		if err == queue.ErrDisposed {
			return ErrServiceStopped
		}
		return errors.Wrap(err, "failed to enqueue transaction pool request")
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TxPoolService) loop() {
	defer close(s.stopped)
	for {
		items, err := s.requests.Poll(1, servicePollTimeout)
		switch err {
		case nil:
		case queue.ErrTimeout:
			select {
			case <-s.quit:
				return
			default:
				continue
			}
		case queue.ErrDisposed:
			return
		default:
			s.logger.Error().Err(err).Msg("Failed to poll transaction pool requests")
			continue
		}
		for _, item := range items {
			req := item.(*poolRequest)
			if err := req.ctx.Err(); err != nil {
				req.done <- err
				continue
			}
			req.done <- req.fn(s.pool)
		}
	}
}
