package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sendTimeout = 10 * time.Second

// Dispatcher queues mails and sends them from a fixed pool of workers, detached from the
// request that enqueued them.
type Dispatcher struct {
	mailer Mailer
	logger *zap.Logger
	queue  chan Mail

	mu     sync.RWMutex
	closed bool
	group  *errgroup.Group
}

func NewDispatcher(mailer Mailer, logger *zap.Logger, size, workers int) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		mailer: mailer,
		logger: logger,
		queue:  make(chan Mail, size),
		group:  new(errgroup.Group),
	}
	for i := 0; i < workers; i++ {
		d.group.Go(d.work)
	}
	return d
}

func (d *Dispatcher) work() error {
	for m := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.mailer.Send(ctx, m); err != nil {
			d.logger.Error("failed to send mail", zap.String("to", m.To), zap.String("subject", m.Subject), zap.Error(err))
		}
		cancel()
	}
	return nil
}

// Enqueue hands m to the workers without blocking. It reports false when the queue is
// full or the dispatcher is closed; the mail is dropped and logged.
func (d *Dispatcher) Enqueue(m Mail) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("mail dropped, dispatcher closed", zap.String("to", m.To), zap.String("subject", m.Subject))
		return false
	}
	select {
	case d.queue <- m:
		return true
	default:
		d.logger.Warn("mail dropped, queue full", zap.String("to", m.To), zap.String("subject", m.Subject))
		return false
	}
}

// Close stops accepting mail and waits for queued mail to be sent or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- d.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.Join(ctx.Err(), errors.New("mail queue not drained"))
	}
}
