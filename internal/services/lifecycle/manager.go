package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc tears one component down.
type ShutdownFunc func(ctx context.Context) error

type step struct {
	name string
	fn   ShutdownFunc
}

// Manager collects teardown steps as components come up and runs them in
// reverse order on shutdown, so the HTTP server stops before the stores it
// talks to.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	steps []step
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register queues a teardown step. Call order is startup order; execution is
// the reverse.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, fn: fn})
}

// Shutdown runs every registered step under the configured deadline. A
// failing step is logged and does not stop the remaining ones.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result error
	for i := len(m.steps) - 1; i >= 0; i-- {
		s := m.steps[i]
		if err := s.fn(ctx); err != nil {
			m.logger.Error("shutdown step failed", zap.String("component", s.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("stopped", zap.String("component", s.name))
	}
	return result
}

// Listen watches for SIGTERM/SIGINT in the background and fires cancel on
// the first one, which unblocks main and starts the shutdown sequence.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("termination signal caught", zap.String("signal", sig.String()))
		cancel()
	}()
}
