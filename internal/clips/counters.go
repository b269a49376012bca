package clips

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"linguo/internal/catalog"
	"linguo/internal/logging"
)

// counterTracker applies view and copy increments off the request path. The
// serving handlers fire and forget; a dropped increment under shutdown is
// acceptable, a blocked response is not.
type counterTracker struct {
	store  *catalog.Store
	logger *slog.Logger

	ops       chan counterOp
	closeOnce sync.Once
	done      chan struct{}
}

type counterOp struct {
	generationUUID string
	copy           bool
}

const counterQueueSize = 256

func newCounterTracker(store *catalog.Store, logger *slog.Logger) *counterTracker {
	tracker := &counterTracker{
		store:  store,
		logger: logger,
		ops:    make(chan counterOp, counterQueueSize),
		done:   make(chan struct{}),
	}
	go tracker.run()
	return tracker
}

func (t *counterTracker) run() {
	defer close(t.done)
	for op := range t.ops {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var err error
		if op.copy {
			err = t.store.AddCopy(ctx, op.generationUUID)
		} else {
			err = t.store.AddView(ctx, op.generationUUID)
		}
		cancel()
		if err != nil {
			t.logger.Warn("counter update failed",
				slog.String("generation", op.generationUUID),
				slog.Bool("copy", op.copy),
				logging.Error(err))
		}
	}
}

// enqueue submits an increment without blocking. Overflow drops the op.
func (t *counterTracker) enqueue(op counterOp) {
	select {
	case t.ops <- op:
	default:
		t.logger.Warn("counter queue full, dropping increment",
			slog.String("generation", op.generationUUID))
	}
}

func (t *counterTracker) close() {
	t.closeOnce.Do(func() {
		close(t.ops)
	})
	<-t.done
}
