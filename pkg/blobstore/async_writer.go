package blobstore

import (
	"context"
	"sync"
	"time"

	"productivity-pal-be/internal/pkg/logger"
)

const asyncWriteTimeout = 10 * time.Second

// AsyncWriter turns Set into a fire-and-forget call. Pending values are
// coalesced per key so the newest value always wins, and a single background
// goroutine writes them to the wrapped store in order. A failed batch is kept
// and retried with the next write unless a newer value replaced it.
type AsyncWriter struct {
	inner  Store
	logger logger.ILogger

	mu       sync.Mutex
	idle     *sync.Cond
	pending  map[string][]byte
	inFlight bool
	closed   bool

	wake    chan struct{}
	quit    chan struct{}
	stopped chan struct{}
}

func NewAsyncWriter(inner Store, log logger.ILogger) *AsyncWriter {
	w := &AsyncWriter{
		inner:   inner,
		logger:  log,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *AsyncWriter) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.drain(context.Background())
		case <-w.quit:
			return
		}
	}
}

// Get reads through to the wrapped store, overlaying values not yet written.
func (w *AsyncWriter) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out, err := w.inner.Get(ctx, keys...)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, k := range keys {
		if v, ok := w.pending[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (w *AsyncWriter) Set(_ context.Context, items map[string][]byte) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	for k, v := range copyItems(items) {
		w.pending[k] = v
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

func (w *AsyncWriter) drain(ctx context.Context) error {
	w.mu.Lock()
	for w.inFlight {
		w.idle.Wait()
	}
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return nil
	}
	batch := w.pending
	w.pending = make(map[string][]byte)
	w.inFlight = true
	w.mu.Unlock()

	writeCtx, cancel := context.WithTimeout(ctx, asyncWriteTimeout)
	err := w.inner.Set(writeCtx, batch)
	cancel()

	w.mu.Lock()
	if err != nil {
		keys := make([]string, 0, len(batch))
		for k, v := range batch {
			if _, newer := w.pending[k]; !newer {
				w.pending[k] = v
			}
			keys = append(keys, k)
		}
		w.logger.Error("BlobStore", "Async write failed, will retry on next write", map[string]interface{}{"error": err.Error(), "keys": keys})
	}
	w.inFlight = false
	w.idle.Broadcast()
	w.mu.Unlock()
	return err
}

// Flush writes everything pending before returning.
func (w *AsyncWriter) Flush(ctx context.Context) error {
	return w.drain(ctx)
}

func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.quit)
	<-w.stopped

	if err := w.drain(context.Background()); err != nil {
		w.logger.Warn("BlobStore", "Dropping unwritten blobs on close", map[string]interface{}{"error": err.Error()})
	}
	return w.inner.Close()
}
