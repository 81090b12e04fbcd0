package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/api/metrics"
	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 10 * time.Second
)

// ErrQueueFull is returned by Enqueue when the target worker has no room left.
var ErrQueueFull = domain.ErrMailQueueFull

// Dispatcher routes outbound mail to a fixed set of workers using consistent
// hashing on the first recipient, so messages to one address keep their order.
type Dispatcher struct {
	workers []chan domain.Message
	mailer  ports.Mailer
	policy  RetryPolicy
	log     zerolog.Logger
	drain   time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, policy RetryPolicy, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Message, numWorkers),
		mailer:  mailer,
		policy:  policy.withDefaults(),
		log:     log,
		drain:   drainTimeout,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// delivers what is still buffered, bounded by the drain timeout, then returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands msg to the worker responsible for its first recipient. It
// never waits for room: a full worker channel yields ErrQueueFull.
func (d *Dispatcher) Enqueue(ctx context.Context, msg domain.Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail queue: message has no recipients")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case d.workers[d.shardIndex(msg.To[0])] <- msg:
		metrics.MailQueueDepth.Inc()
		return nil
	default:
		metrics.MailDeliveriesTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(recipient)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Message) {
	log := d.log.With().Int("worker_id", id).Logger()
	for {
		select {
		case <-ctx.Done():
			d.drainWorker(ch, log)
			return
		case msg := <-ch:
			metrics.MailQueueDepth.Dec()
			_ = deliver(ctx, d.mailer, d.policy, msg, log)
		}
	}
}

func (d *Dispatcher) drainWorker(ch <-chan domain.Message, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), d.drain)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			if n := len(ch); n > 0 {
				log.Warn().Int("pending", n).Msg("mail worker stopped before draining its queue")
			}
			return
		case msg := <-ch:
			metrics.MailQueueDepth.Dec()
			_ = deliver(ctx, d.mailer, d.policy, msg, log)
		default:
			return
		}
	}
}
