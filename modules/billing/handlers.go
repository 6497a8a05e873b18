package billing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fleetdesk/handler"
	"github.com/dmitrymomot/fleetdesk/pkg/binder"
	"github.com/dmitrymomot/fleetdesk/pkg/jwt"
	"github.com/dmitrymomot/fleetdesk/svc/subscription"
)

const (
	plansCacheControl        = "public, max-age=3600, s-maxage=3600, stale-while-revalidate=86400"
	subscriptionCacheControl = "private, max-age=30"
	usageCacheControl        = "private, max-age=15"
)

type planRequest struct {
	Plan subscription.PlanID `json:"plan"`
}

type messageResponse struct {
	Message      string                     `json:"message"`
	Subscription *subscription.Subscription `json:"subscription"`
}

type handlers struct {
	svc *subscription.Service
	log *slog.Logger
}

func (h *handlers) wrapNoBody(fn handler.HandlerFunc[handler.Context, struct{}]) http.HandlerFunc {
	return handler.Wrap(fn,
		handler.WithErrorHandler[handler.Context, struct{}](handler.NewErrorHandler(h.log)),
	)
}

func (h *handlers) wrapPlan(fn handler.HandlerFunc[handler.Context, planRequest]) http.HandlerFunc {
	return handler.Wrap(fn,
		handler.WithBinders[handler.Context, planRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, planRequest](handler.NewErrorHandler(h.log)),
	)
}

func userID(ctx context.Context) (string, error) {
	id := jwt.UserID(ctx)
	if id == "" {
		return "", handler.ErrUnauthorized
	}
	return id, nil
}

func (h *handlers) listPlans(_ handler.Context, _ struct{}) handler.Response {
	return handler.JSON(h.svc.Catalog().List(), handler.WithCacheControl(plansCacheControl))
}

func (h *handlers) getSubscription(ctx handler.Context, _ struct{}) handler.Response {
	uid, err := userID(ctx)
	if err != nil {
		return handler.Fail(err)
	}
	sub, err := h.svc.GetOrCreate(ctx, uid)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(sub, handler.WithCacheControl(subscriptionCacheControl))
}

func (h *handlers) subscribe(ctx handler.Context, req planRequest) handler.Response {
	uid, err := userID(ctx)
	if err != nil {
		return handler.Fail(err)
	}
	sub, err := h.svc.Subscribe(ctx, uid, req.Plan)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(sub)
}

func (h *handlers) changePlan(ctx handler.Context, req planRequest) handler.Response {
	uid, err := userID(ctx)
	if err != nil {
		return handler.Fail(err)
	}
	sub, err := h.svc.ChangePlan(ctx, uid, req.Plan)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(sub)
}

func (h *handlers) cancel(ctx handler.Context, _ struct{}) handler.Response {
	uid, err := userID(ctx)
	if err != nil {
		return handler.Fail(err)
	}
	sub, err := h.svc.CancelAtPeriodEnd(ctx, uid)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(messageResponse{
		Message:      "Subscription will be canceled at the end of the billing period",
		Subscription: sub,
	})
}

func (h *handlers) resume(ctx handler.Context, _ struct{}) handler.Response {
	uid, err := userID(ctx)
	if err != nil {
		return handler.Fail(err)
	}
	sub, err := h.svc.Resume(ctx, uid)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(messageResponse{Message: "Subscription resumed successfully", Subscription: sub})
}

func (h *handlers) limits(ctx handler.Context, _ struct{}) handler.Response {
	uid, err := userID(ctx)
	if err != nil {
		return handler.Fail(err)
	}
	limits, err := h.svc.CheckLimits(ctx, uid)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(limits, handler.WithCacheControl(subscriptionCacheControl))
}

func (h *handlers) usage(ctx handler.Context, _ struct{}) handler.Response {
	uid, err := userID(ctx)
	if err != nil {
		return handler.Fail(err)
	}
	usage, err := h.svc.UsageStats(ctx, uid)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(usage, handler.WithCacheControl(usageCacheControl))
}
