package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
	"qrquicker/internal/metrics"
	"qrquicker/internal/notify"
)

// Options sizes the controller.
type Options struct {
	Workers       int
	QueueSize     int
	DefaultLocale string
}

type queuedRequest struct {
	req  domain.CreationRequest
	done chan ChainOutcome
}

// Controller accepts creation requests and runs each one as an independent
// generate -> save chain on a pool of workers. Chains run detached from the
// caller: canceling the context passed to Run stops intake and drains the
// queue, it does not interrupt chains in flight.
type Controller struct {
	chain    *Chain
	notifier domain.Notifier
	texts    *notify.Catalog
	opts     Options
	logger   zerolog.Logger
	queue    chan queuedRequest

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup

	newID func() string
	now   func() time.Time
}

// NewController builds a controller running gen then save for every request.
func NewController(gen *GenerateStep, save *SaveStep, notifier domain.Notifier, texts *notify.Catalog, opts Options, logger zerolog.Logger) *Controller {
	logger = logger.With().Str("component", "pipeline").Logger()
	return newController(NewChain(logger, gen, save), notifier, texts, opts, logger)
}

func newController(chain *Chain, notifier domain.Notifier, texts *notify.Catalog, opts Options, logger zerolog.Logger) *Controller {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	return &Controller{
		chain:    chain,
		notifier: notifier,
		texts:    texts,
		opts:     opts,
		logger:   logger,
		queue:    make(chan queuedRequest, opts.QueueSize),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// CreateQrCode schedules a chain for text and returns immediately. The
// outcome is only observable through notifications and the gallery. A request
// that cannot be queued gets a SAVE_FAILURE notification.
func (c *Controller) CreateQrCode(text string) {
	c.CreateQrCodeLocalized(text, "")
}

// CreateQrCodeLocalized is CreateQrCode with notification texts in locale.
func (c *Controller) CreateQrCodeLocalized(text, locale string) {
	_, _ = c.Enqueue(text, locale)
}

// Enqueue schedules a chain like CreateQrCodeLocalized and also reports the
// assigned chain id, or why the request was rejected.
func (c *Controller) Enqueue(text, locale string) (string, error) {
	req := domain.CreationRequest{ID: c.newID(), Text: text, Locale: locale}
	if _, err := c.Submit(req); err != nil {
		c.logger.Warn().Err(err).Msg("pipeline: request rejected")
		postNotice(context.Background(), c.notifier, c.logger, c.texts.Event(domain.SlotSaveFailure, c.locale(locale)))
		return "", err
	}
	return req.ID, nil
}

// Submit queues req without blocking. The returned channel yields the chain
// outcome once and is then closed. It fails with domain.ErrQueueFull or
// domain.ErrNotAccepting.
func (c *Controller) Submit(req domain.CreationRequest) (<-chan ChainOutcome, error) {
	item := c.prepare(req)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		metrics.RejectedTotal.WithLabelValues("stopped").Inc()
		return nil, domain.ErrNotAccepting
	}
	select {
	case c.queue <- item:
		c.queued(item)
		return item.done, nil
	default:
		metrics.RejectedTotal.WithLabelValues("queue_full").Inc()
		return nil, domain.ErrQueueFull
	}
}

// SubmitWait is Submit for callers that prefer waiting for queue room over
// domain.ErrQueueFull. It needs running workers to make progress and returns
// ctx.Err() if ctx ends first.
func (c *Controller) SubmitWait(ctx context.Context, req domain.CreationRequest) (<-chan ChainOutcome, error) {
	item := c.prepare(req)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		metrics.RejectedTotal.WithLabelValues("stopped").Inc()
		return nil, domain.ErrNotAccepting
	}
	select {
	case c.queue <- item:
		c.queued(item)
		return item.done, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Controller) prepare(req domain.CreationRequest) queuedRequest {
	if req.ID == "" {
		req.ID = c.newID()
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = c.now().UTC()
	}
	req.Locale = c.locale(req.Locale)
	return queuedRequest{req: req, done: make(chan ChainOutcome, 1)}
}

func (c *Controller) queued(item queuedRequest) {
	metrics.QueueDepth.Inc()
	c.logger.Info().Str("job_id", item.req.ID).Msg("pipeline: request queued")
}

// Run starts the workers and blocks until ctx is canceled, then stops intake
// and waits for queued chains to finish.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("pipeline: controller already running")
	}
	if c.closed {
		c.mu.Unlock()
		return domain.ErrNotAccepting
	}
	c.started = true
	c.wg.Add(c.opts.Workers)
	c.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	for i := 0; i < c.opts.Workers; i++ {
		go c.worker(runCtx, i)
	}
	c.logger.Info().Int("workers", c.opts.Workers).Int("queue_size", c.opts.QueueSize).Msg("pipeline: started")

	<-ctx.Done()
	c.Stop()
	return nil
}

// Stop rejects new requests and waits until every queued chain has run.
// Without running workers the queue is drained on the calling goroutine.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.wg.Wait()
		return
	}
	c.closed = true
	close(c.queue)
	started := c.started
	c.mu.Unlock()

	if !started {
		c.wg.Add(1)
		c.worker(context.Background(), 0)
	}
	c.wg.Wait()
	c.logger.Info().Msg("pipeline: stopped")
}

// Pending returns the number of queued requests not yet picked by a worker.
func (c *Controller) Pending() int {
	return len(c.queue)
}

func (c *Controller) worker(ctx context.Context, n int) {
	defer c.wg.Done()
	for item := range c.queue {
		metrics.QueueDepth.Dec()
		c.logger.Info().Str("job_id", item.req.ID).Int("worker", n).Msg("pipeline: picked request")

		out := c.chain.Run(ctx, item.req.ID, Data{
			KeyTextInput: item.req.Text,
			KeyLocale:    item.req.Locale,
		})
		metrics.ChainsTotal.WithLabelValues(string(out.Status)).Inc()

		if out.Succeeded() {
			c.logger.Info().Str("job_id", item.req.ID).Str("uri", out.Output.Get(KeyPublishedURI)).Msg("pipeline: chain succeeded")
		} else {
			c.logger.Warn().Str("job_id", item.req.ID).Str("step", string(out.FailedStep)).Str("failure", string(out.Failure)).Msg("pipeline: chain failed")
		}

		item.done <- out
		close(item.done)
	}
}

func (c *Controller) locale(locale string) string {
	if locale == "" {
		return c.opts.DefaultLocale
	}
	return locale
}
