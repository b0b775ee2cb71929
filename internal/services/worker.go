package services

import (
	"context"
	"errors"
	"time"

	"github.com/akraslov/notesync/internal/common"
	"github.com/akraslov/notesync/internal/logging"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Outcome classifies a single sync pass.
type Outcome int

const (
	// OutcomeDone means the pending queue fully drained.
	OutcomeDone Outcome = iota
	// OutcomeRetry means a remote call failed; the pass should be re-run
	// with backoff.
	OutcomeRetry
	// OutcomeFatal means a non-retryable failure: reported, not retried.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeRetry:
		return "retry"
	default:
		return "fatal"
	}
}

// SyncWorker is the background runner: it drains the pending-create queue on
// demand after local mutations and on a fixed cadence while the app is
// active, and pulls authoritative remote state for logged-in users.
//
// Passes are idempotent: a re-run after a retry-later outcome skips notes
// whose pending flag has already been cleared.
type SyncWorker struct {
	notes    *NoteService
	users    *UserService
	shares   *ShareService
	log      logging.Logger
	interval time.Duration
	group    singleflight.Group
}

func NewSyncWorker(notes *NoteService, users *UserService, shares *ShareService, interval time.Duration, log logging.Logger) *SyncWorker {
	return &SyncWorker{notes: notes, users: users, shares: shares, interval: interval, log: log}
}

// RunOnce performs one drain pass: queued registrations first, then the
// pending-note backlog. Concurrent callers share a single flight, so
// overlapping triggers cannot pile up.
func (w *SyncWorker) RunOnce(ctx context.Context, ownerID *int64) Outcome {
	_, err, _ := w.group.Do("drain", func() (any, error) {
		if err := w.users.PostPendingUsers(ctx); err != nil {
			return nil, err
		}
		return nil, w.notes.PostPendingNotes(ctx, ownerID)
	})
	switch {
	case err == nil:
		return OutcomeDone
	case common.IsRemote(err) || errors.Is(err, context.DeadlineExceeded):
		return OutcomeRetry
	default:
		w.log.Error(ctx, "sync pass failed", "error", err)
		return OutcomeFatal
	}
}

// Kick schedules a fire-and-forget drain after a successful local mutation.
func (w *SyncWorker) Kick(ctx context.Context, ownerID *int64) {
	go func() {
		if out := w.RunOnce(ctx, ownerID); out != OutcomeDone {
			w.log.Debug(ctx, "deferred sync", "outcome", out.String())
		}
	}()
}

// Poll refreshes the user's notes and shares from the server, at most one
// in-flight refresh per entity family.
func (w *SyncWorker) Poll(ctx context.Context, userID int64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err, _ := w.group.Do("pull-notes", func() (any, error) {
			_, err := w.notes.FetchUserNotes(gctx, userID)
			return nil, err
		})
		return err
	})
	g.Go(func() error {
		_, err, _ := w.group.Do("pull-shares", func() (any, error) {
			return nil, w.shares.SyncShares(gctx, userID)
		})
		return err
	})
	return g.Wait()
}

// Run loops until ctx is cancelled: every tick drains the queue, re-running a
// failed pass with capped fibonacci backoff, and refreshes remote state for
// logged-in users.
func (w *SyncWorker) Run(ctx context.Context, ownerID *int64) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if out := w.RunOnce(ctx, ownerID); out == OutcomeRetry {
			if err := w.retryPass(ctx, ownerID); err != nil {
				w.log.Warn(ctx, "pending queue not drained, waiting for next tick", "error", err)
				continue
			}
		}

		if ownerID != nil {
			if err := w.Poll(ctx, *ownerID); err != nil {
				w.log.Warn(ctx, "remote refresh failed", "error", err)
			}
		}
	}
}

var errStillPending = errors.New("pending queue not drained")

func (w *SyncWorker) retryPass(ctx context.Context, ownerID *int64) error {
	b := retry.WithMaxRetries(5, retry.WithCappedDuration(w.interval, retry.NewFibonacci(time.Second)))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		switch w.RunOnce(ctx, ownerID) {
		case OutcomeDone:
			return nil
		case OutcomeRetry:
			return retry.RetryableError(errStillPending)
		default:
			return errStillPending
		}
	})
}
