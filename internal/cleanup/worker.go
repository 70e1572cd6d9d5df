// Package cleanup borra en segundo plano las imágenes huérfanas del media host.
package cleanup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"product-admin/internal/media"
)

// Destroyer elimina un asset del media host
type Destroyer interface {
	Destroy(ctx context.Context, assetID string) error
}

// Job es un borrado de imagen pendiente
type Job struct {
	ID         uuid.UUID `json:"id"`
	ImageURL   string    `json:"imageUrl"`
	AssetID    string    `json:"assetId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// FailedJob es un borrado que agotó los reintentos o nunca entró a la cola
type FailedJob struct {
	Job
	Attempts int       `json:"attempts"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failedAt"`
}

type Options struct {
	Workers        int
	QueueSize      int
	MaxElapsedTime time.Duration
	// InitialInterval reemplaza la primera espera del backoff; cero deja el valor por defecto
	InitialInterval time.Duration
	// AttemptTimeout limita cada llamada a Destroy
	AttemptTimeout time.Duration
}

// Worker procesa los borrados con reintentos y guarda los fallidos
type Worker struct {
	destroyer Destroyer
	opts      Options
	jobs      chan Job

	mu          sync.Mutex
	deadLetters []FailedJob

	// intake protege closed y el envío/cierre de jobs
	intake    sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	enqueued  atomic.Uint64
	processed atomic.Uint64
}

func NewWorker(destroyer Destroyer, opts Options) *Worker {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.MaxElapsedTime <= 0 {
		opts.MaxElapsedTime = 2 * time.Minute
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 10 * time.Second
	}
	return &Worker{
		destroyer: destroyer,
		opts:      opts,
		jobs:      make(chan Job, opts.QueueSize),
	}
}

// Start lanza las goroutines del worker
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.opts.Workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.run(ctx)
		}()
	}
	log.WithFields(log.Fields{
		"component": "cleanup",
		"workers":   w.opts.Workers,
	}).Info("image cleanup worker started")
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Enqueue agenda el borrado de imageURL sin bloquear. Indica si el job
// entró a la cola; los rechazados van a la lista de fallidos
func (w *Worker) Enqueue(imageURL string) bool {
	job := Job{
		ID:         uuid.New(),
		ImageURL:   imageURL,
		AssetID:    media.AssetID(imageURL),
		EnqueuedAt: time.Now().UTC(),
	}
	if job.AssetID == "" {
		log.WithFields(log.Fields{
			"component": "cleanup",
			"image":     imageURL,
		}).Warn("image has no asset id, skipping deletion")
		return false
	}

	w.intake.RLock()
	defer w.intake.RUnlock()
	if w.closed {
		w.deadLetter(job, 0, "cleanup intake closed")
		return false
	}

	w.enqueued.Add(1)
	select {
	case w.jobs <- job:
		return true
	default:
		w.deadLetter(job, 0, "cleanup queue full")
		w.processed.Add(1)
		return false
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	defer w.processed.Add(1)

	logger := log.WithFields(log.Fields{
		"component": "cleanup",
		"job_id":    job.ID,
		"asset_id":  job.AssetID,
	})

	attempts := 0
	operation := func() (struct{}, error) {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, w.opts.AttemptTimeout)
		defer cancel()
		if err := w.destroyer.Destroy(attemptCtx, job.AssetID); err != nil {
			logger.WithFields(log.Fields{"attempt": attempts, "error": err}).Debug("image deletion attempt failed")
			if errors.Is(err, context.Canceled) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	bo := backoff.NewExponentialBackOff()
	if w.opts.InitialInterval > 0 {
		bo.InitialInterval = w.opts.InitialInterval
	}

	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(w.opts.MaxElapsedTime))
	if err != nil {
		logger.WithFields(log.Fields{"attempts": attempts, "error": err}).Error("image deletion failed")
		w.deadLetter(job, attempts, err.Error())
		return
	}
	logger.WithField("attempts", attempts).Info("orphaned image deleted")
}

func (w *Worker) deadLetter(job Job, attempts int, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deadLetters = append(w.deadLetters, FailedJob{
		Job:      job,
		Attempts: attempts,
		Error:    reason,
		FailedAt: time.Now().UTC(),
	})
}

// DeadLetters retorna una copia de los borrados fallidos
func (w *Worker) DeadLetters() []FailedJob {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]FailedJob, len(w.deadLetters))
	copy(out, w.deadLetters)
	return out
}

// Pending retorna los jobs aceptados que aún no terminan
func (w *Worker) Pending() int {
	return int(w.enqueued.Load() - w.processed.Load())
}

// DrainUntil espera hasta que terminen todos los jobs aceptados o ctx termine
func (w *Worker) DrainUntil(ctx context.Context) bool {
	for {
		if w.Pending() == 0 {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// Stop cierra la entrada y espera a que terminen los jobs encolados
func (w *Worker) Stop() {
	w.intake.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.intake.Unlock()

	w.wg.Wait()
	log.WithField("component", "cleanup").Info("image cleanup worker stopped")
}
