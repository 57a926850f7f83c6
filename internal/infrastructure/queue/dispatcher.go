package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/neuroguard/patient-registry/internal/api/metrics"
	"github.com/neuroguard/patient-registry/internal/core/domain"
	"github.com/neuroguard/patient-registry/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the patient id, so events for one record are persisted in the
// order they were produced. Audit is best-effort: a failed insert is logged
// and counted, never surfaced to the mutation that produced it.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers terminate only when Stop
// closes their channels: cancelling ctx must not abandon events already
// accepted, so it seeds the insert context but does not end the loop.
func (d *Dispatcher) Start(ctx context.Context) {
	insertCtx := context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(insertCtx, i, ch)
	}
}

// Stop closes the worker channels and waits until buffered events are
// drained. No Record calls may follow Stop.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		for _, ch := range d.workers {
			close(ch)
		}
	})
	d.wg.Wait()
}

// Record sends an event to the worker responsible for its patient id.
// Implements ports.AuditSink. Non-blocking: a full channel drops the event
// rather than stalling the mutation.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	idx := d.shardIndex(event.PatientID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditWriteErrorsTotal.Inc()
		d.log.Warn().Str("patient_id", event.PatientID).Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a patient id deterministically to a worker index.
func (d *Dispatcher) shardIndex(patientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(patientID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)
	for event := range ch {
		metrics.AuditQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

		start := time.Now()
		if err := d.repo.Insert(ctx, &event); err != nil {
			metrics.AuditWriteErrorsTotal.Inc()
			d.log.Error().Err(err).
				Str("patient_id", event.PatientID).
				Int("worker_id", id).
				Msg("audit event persistence failed")
			continue
		}
		metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())
	}
}
