package feature

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskvine/taskvine/pkg/entitlement"
)

// BusinessFunc is the wrapped use case: the actual mutation the pipeline
// surrounds.
type BusinessFunc[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Dispatcher orchestrates one named business operation through the handler
// pipeline. Handlers run in registration order within each phase.
//
// Per invocation:
//  1. a fresh Context is built;
//  2. every handler's Validate runs; the first error aborts the operation,
//     the business function is never invoked and no later handler runs;
//  3. Before runs for handlers whose feature is enabled (errors logged);
//  4. the business function executes;
//  5. on success, After runs per enabled handler (errors logged, the
//     committed result stands), then Async phases are scheduled on the pool;
//  6. on failure, every handler's OnError runs regardless of enablement and
//     the original error is returned unchanged.
//
// Two concurrent dispatches of the same operation may both pass a limit
// Validate before either commits; the pipeline is a best-effort pre-check,
// not a serialization point.
type Dispatcher[Req, Res any] struct {
	name     string
	store    entitlement.Store
	handlers []Handler[Req, Res]
	pool     *WorkerPool
	log      *logrus.Entry
}

func NewDispatcher[Req, Res any](
	name string,
	store entitlement.Store,
	pool *WorkerPool,
	log *logrus.Entry,
	handlers ...Handler[Req, Res],
) *Dispatcher[Req, Res] {
	return &Dispatcher[Req, Res]{
		name:     name,
		store:    store,
		handlers: handlers,
		pool:     pool,
		log:      log,
	}
}

func (d *Dispatcher[Req, Res]) Name() string {
	return d.name
}

func (d *Dispatcher[Req, Res]) Execute(ctx context.Context, workspaceID, actorID uuid.UUID, req Req, op BusinessFunc[Req, Res]) (Res, error) {
	var zero Res
	fctx := NewContext(workspaceID, actorID)

	fctx.transition(StateValidating)
	for _, h := range d.handlers {
		if err := h.Validate(ctx, fctx, req); err != nil {
			fctx.transition(StateAborted)
			return zero, err
		}
	}

	for _, h := range d.handlers {
		if !d.enabled(ctx, workspaceID, h) {
			continue
		}
		if err := h.Before(ctx, fctx, req); err != nil {
			d.logHandler(h, "before").WithError(err).Warn("feature: before phase failed")
		}
	}

	fctx.transition(StateExecuting)
	res, err := op(ctx, req)
	if err != nil {
		fctx.MarkFailed()
		fctx.transition(StateFailed)
		fctx.transition(StateErrorHandling)
		for _, h := range d.handlers {
			h.OnError(ctx, fctx, req, err)
		}
		fctx.transition(StateDone)
		return zero, err
	}

	fctx.transition(StateSucceeded)
	fctx.transition(StatePostProcessing)
	for _, h := range d.handlers {
		if !d.enabled(ctx, workspaceID, h) {
			continue
		}
		if afterErr := h.After(ctx, fctx, req, res); afterErr != nil {
			d.logHandler(h, "after").WithError(afterErr).Error("feature: after phase failed")
		}
	}

	d.scheduleAsync(workspaceID, fctx, res)

	fctx.transition(StateDone)
	return res, nil
}

func (d *Dispatcher[Req, Res]) scheduleAsync(workspaceID uuid.UUID, fctx *Context, res Res) {
	if d.pool == nil {
		return
	}
	for _, h := range d.handlers {
		if !d.enabled(context.Background(), workspaceID, h) {
			continue
		}
		handler := h
		taskName := d.name + ":" + string(handler.Feature())
		// The caller has already received its response; async phases run
		// detached from the request context.
		d.pool.Submit(taskName, func() {
			handler.Async(context.Background(), fctx, res)
		})
	}
}

func (d *Dispatcher[Req, Res]) enabled(ctx context.Context, workspaceID uuid.UUID, h Handler[Req, Res]) bool {
	if d.store == nil {
		return true
	}
	return d.store.IsEnabled(ctx, workspaceID, h.Feature())
}

func (d *Dispatcher[Req, Res]) logHandler(h Handler[Req, Res], phase string) *logrus.Entry {
	entry := d.log
	if entry == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		entry = logrus.NewEntry(l)
	}
	return entry.WithFields(logrus.Fields{
		"operation": d.name,
		"feature":   string(h.Feature()),
		"phase":     phase,
	})
}
