package feature

import (
	"context"

	"github.com/taskvine/taskvine/pkg/entitlement"
)

// Handler is one unit of cross-cutting logic attached to a use case. A
// concrete handler implements only the phases it needs; embed BaseHandler
// for the rest.
//
// The declared Feature gates Before/After/Async: they are skipped when the
// feature is disabled for the workspace. Validate runs regardless, since it
// enforces plan limits, which are orthogonal to feature toggles, and
// OnError always runs, because cleanup must not be skippable.
type Handler[Req, Res any] interface {
	Feature() entitlement.Feature

	// Validate is a pre-condition check. Returning an error aborts the whole
	// operation before the business operation runs.
	Validate(ctx context.Context, fctx *Context, req Req) error

	// Before runs ahead of the business operation for enabled features.
	// Errors are logged, not propagated: pre-processing is advisory.
	Before(ctx context.Context, fctx *Context, req Req) error

	// After runs once the business operation committed. Errors are logged,
	// never unwind the business result.
	After(ctx context.Context, fctx *Context, req Req, res Res) error

	// OnError runs when the business operation failed, for every handler.
	OnError(ctx context.Context, fctx *Context, req Req, err error)

	// Async runs off the critical path on the dispatcher's worker pool.
	Async(ctx context.Context, fctx *Context, res Res)
}

// BaseHandler provides no-op phases so handlers only spell out what they use.
type BaseHandler[Req, Res any] struct {
	feature entitlement.Feature
}

func NewBaseHandler[Req, Res any](f entitlement.Feature) BaseHandler[Req, Res] {
	return BaseHandler[Req, Res]{feature: f}
}

func (h BaseHandler[Req, Res]) Feature() entitlement.Feature {
	return h.feature
}

func (h BaseHandler[Req, Res]) Validate(context.Context, *Context, Req) error {
	return nil
}

func (h BaseHandler[Req, Res]) Before(context.Context, *Context, Req) error {
	return nil
}

func (h BaseHandler[Req, Res]) After(context.Context, *Context, Req, Res) error {
	return nil
}

func (h BaseHandler[Req, Res]) OnError(context.Context, *Context, Req, error) {
}

func (h BaseHandler[Req, Res]) Async(context.Context, *Context, Res) {
}
