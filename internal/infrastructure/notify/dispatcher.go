package notify

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenfield-library/lending-system/internal/api/metrics"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	publishTimeout = 5 * time.Second
)

// Dispatcher decouples event emission from the caller-facing operation: the
// core services Emit and return immediately, a fixed set of workers drains
// into the Notifier. Events are sharded by key with consistent hashing, so
// events about the same entity are published in order.
type Dispatcher struct {
	workers  []chan ports.Event
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.Event, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Event, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Emit hands an event to the worker responsible for its shard key. When the
// worker's buffer is full the event is dropped rather than blocking the
// triggering operation; notification is best-effort telemetry.
func (d *Dispatcher) Emit(e ports.Event) {
	idx := d.shardIndex(e.Key)
	select {
	case d.workers[idx] <- e:
		metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotifyFailedTotal.WithLabelValues(e.Kind, "queue_full").Inc()
		d.log.Warn().Str("kind", e.Kind).Msg("notification dropped, worker queue full")
	}
}

// shardIndex maps a shard key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.publish(ctx, id, event)
			metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, workerID int, event ports.Event) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := d.notifier.Publish(pubCtx, event); err != nil {
		metrics.NotifyFailedTotal.WithLabelValues(event.Kind, "publish_error").Inc()
		d.log.Error().Err(err).
			Str("kind", event.Kind).
			Int("worker_id", workerID).
			Msg("notification publish failed")
		return
	}

	metrics.NotifyPublishedTotal.WithLabelValues(event.Kind).Inc()
	d.log.Debug().Str("kind", event.Kind).Str("subject", event.Subject).Msg("notification published")
}
