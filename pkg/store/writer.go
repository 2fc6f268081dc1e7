package store

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Writer moves inserts off the caller's goroutine. Rows are batched and
// written in one transaction per tick.
type Writer struct {
	store    *Store
	rows     chan *AccelerometerData
	interval time.Duration
	logger   Logger

	// stopping is closed first so blocked senders give up; closed is then set
	// under mu, after which no send can be in flight.
	stopping chan struct{}
	mu       sync.RWMutex
	closed   bool
}

func NewWriter(s *Store, bufSize int, interval time.Duration, l Logger) *Writer {
	return &Writer{
		store:    s,
		rows:     make(chan *AccelerometerData, bufSize),
		interval: interval,
		logger:   l,
		stopping: make(chan struct{}),
	}
}

// Enqueue hands a row to the writer. It returns false once the writer has
// stopped; a row for which it returns true is always written or reported by Run.
func (w *Writer) Enqueue(row *AccelerometerData) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.rows <- row:
		return true
	case <-w.stopping:
		return false
	}
}

// shutdown rejects further rows and waits for in-flight sends to finish.
func (w *Writer) shutdown() {
	close(w.stopping)
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// Run writes batches until ctx is done, then flushes whatever is still queued.
// A failed batch stops the writer and its error is returned.
func (w *Writer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var batch []*AccelerometerData

	flush := func(ctx context.Context) error {
		if len(batch) == 0 {
			return nil
		}
		err := w.store.InsertBatch(ctx, batch)
		batch = nil
		if err != nil {
			return errors.Wrap(err, "transaction")
		}
		return nil
	}

	for {
		select {
		case row := <-w.rows:
			batch = append(batch, row)
		case <-ticker.C:
			if err := flush(ctx); err != nil {
				w.shutdown()
				return err
			}
		case <-ctx.Done():
			w.shutdown()
		drain:
			for {
				select {
				case row := <-w.rows:
					batch = append(batch, row)
				default:
					break drain
				}
			}
			n := len(batch)
			if err := flush(context.Background()); err != nil {
				return err
			}
			if n > 0 {
				w.logger.Printf("writer flushed %d rows on shutdown", n)
			}
			return nil
		}
	}
}
