package password

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Worker runs hash computations on their own goroutines, at most size at a
// time, so CPU-bound argon2 work never runs on the request goroutine and
// cannot starve request handling.
type Worker struct {
	hasher *Hasher
	sem    *semaphore.Weighted
}

// NewWorker creates a Worker. A size below one defaults to GOMAXPROCS.
func NewWorker(hasher *Hasher, size int) *Worker {
	if size < 1 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Worker{
		hasher: hasher,
		sem:    semaphore.NewWeighted(int64(size)),
	}
}

type verifyResult struct {
	ok  bool
	err error
}

// Verify checks password against encoded on a worker goroutine.
// If ctx ends first the computation still finishes in the background,
// but the caller gets ctx.Err() immediately.
func (w *Worker) Verify(ctx context.Context, password []byte, encoded string) (bool, error) {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}

	pw := clone(password)
	done := make(chan verifyResult, 1)
	go func() {
		defer w.sem.Release(1)
		defer wipe(pw)
		ok, err := w.hasher.Verify(pw, encoded)
		done <- verifyResult{ok: ok, err: err}
	}()

	select {
	case res := <-done:
		return res.ok, res.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type hashResult struct {
	encoded string
	err     error
}

// Hash computes a new encoded hash of password on a worker goroutine.
func (w *Worker) Hash(ctx context.Context, password []byte) (string, error) {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}

	pw := clone(password)
	done := make(chan hashResult, 1)
	go func() {
		defer w.sem.Release(1)
		defer wipe(pw)
		encoded, err := w.hasher.Hash(pw)
		done <- hashResult{encoded: encoded, err: err}
	}()

	select {
	case res := <-done:
		return res.encoded, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// DummyHash computes the hasher's dummy hash. It is meant to run once at startup.
func (w *Worker) DummyHash() string {
	return w.hasher.DummyHash()
}

// clone gives the worker goroutine its own copy, so the caller may wipe
// its buffer even when it stops waiting early.
func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
