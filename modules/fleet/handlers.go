package fleet

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/fleetdesk/handler"
	"github.com/dmitrymomot/fleetdesk/pkg/binder"
	"github.com/dmitrymomot/fleetdesk/pkg/jwt"
	"github.com/dmitrymomot/fleetdesk/pkg/validator"
	"github.com/dmitrymomot/fleetdesk/svc/driver"
)

type driverRequest struct {
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	DateOfBirth   string              `json:"dateOfBirth"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	State         string              `json:"state"`
	ZipCode       string              `json:"zipCode"`
	LicenseNumber string              `json:"licenseNumber"`
	LicenseExpiry string              `json:"licenseExpiry"`
	LicenseClass  driver.LicenseClass `json:"licenseClass"`
	Status        driver.Status       `json:"status"`
}

// toDriver parses the date fields. Missing dates are left zero for
// Driver.Validate to report.
func (req driverRequest) toDriver() (driver.Driver, error) {
	if err := validator.Apply(
		validator.When(req.DateOfBirth != "", validator.ValidDate("dateOfBirth", req.DateOfBirth)),
		validator.When(req.LicenseExpiry != "", validator.ValidDate("licenseExpiry", req.LicenseExpiry)),
	); err != nil {
		return driver.Driver{}, err
	}

	return driver.Driver{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		DateOfBirth:   optionalDate(req.DateOfBirth),
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: optionalDate(req.LicenseExpiry),
		LicenseClass:  req.LicenseClass,
		Status:        req.Status,
	}, nil
}

func optionalDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := validator.ParseDate(s)
	return t
}

type idRequest struct {
	ID string `path:"id"`
}

type updateDriverRequest struct {
	ID string `path:"id" json:"-"`
	driverRequest
}

type driverResponse struct {
	Message string         `json:"message"`
	Driver  *driver.Driver `json:"data,omitempty"`
}

type listQuery struct {
	Status string `query:"status"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

// filter maps the query onto a driver.Filter. "all" and an empty status
// match every status.
func (q listQuery) filter() (driver.Filter, error) {
	f := driver.Filter{Page: q.Page, Limit: q.Limit}
	if q.Status == "" || q.Status == "all" {
		return f, nil
	}
	st, ok := driver.ParseStatus(q.Status)
	if !ok {
		return f, validator.ValidationErrors{{
			Field:   "status",
			Message: "must be one of all, active, inactive, pending",
		}}
	}
	f.Status = st
	return f, nil
}

type expiringQuery struct {
	Days int `query:"days"`
}

type dataResponse struct {
	Data any `json:"data"`
}

type handlers struct {
	drivers *driver.Service
	log     *slog.Logger
}

func (h *handlers) userID(ctx handler.Context) (string, error) {
	id := jwt.UserID(ctx)
	if id == "" {
		return "", handler.ErrUnauthorized
	}
	return id, nil
}

func (h *handlers) create() http.HandlerFunc {
	return handler.Wrap(
		func(ctx handler.Context, req driverRequest) handler.Response {
			uid, err := h.userID(ctx)
			if err != nil {
				return handler.Fail(err)
			}
			d, err := req.toDriver()
			if err != nil {
				return handler.Fail(err)
			}
			created, err := h.drivers.Create(ctx, uid, d)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(
				driverResponse{Message: "Driver created successfully", Driver: created},
				handler.WithStatus(http.StatusCreated),
			)
		},
		handler.WithBinders[handler.Context, driverRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, driverRequest](handler.NewErrorHandler(h.log)),
	)
}

func (h *handlers) get() http.HandlerFunc {
	return handler.Wrap(
		func(ctx handler.Context, req idRequest) handler.Response {
			uid, err := h.userID(ctx)
			if err != nil {
				return handler.Fail(err)
			}
			d, err := h.drivers.Get(ctx, uid, req.ID)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(dataResponse{Data: d})
		},
		handler.WithBinders[handler.Context, idRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, idRequest](handler.NewErrorHandler(h.log)),
	)
}

func (h *handlers) update() http.HandlerFunc {
	return handler.Wrap(
		func(ctx handler.Context, req updateDriverRequest) handler.Response {
			uid, err := h.userID(ctx)
			if err != nil {
				return handler.Fail(err)
			}
			changes, err := req.toDriver()
			if err != nil {
				return handler.Fail(err)
			}
			d, err := h.drivers.Update(ctx, uid, req.ID, changes)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(driverResponse{Message: "Driver updated successfully", Driver: d})
		},
		handler.WithBinders[handler.Context, updateDriverRequest](binder.Path(chi.URLParam), binder.JSON()),
		handler.WithErrorHandler[handler.Context, updateDriverRequest](handler.NewErrorHandler(h.log)),
	)
}

func (h *handlers) remove() http.HandlerFunc {
	return handler.Wrap(
		func(ctx handler.Context, req idRequest) handler.Response {
			uid, err := h.userID(ctx)
			if err != nil {
				return handler.Fail(err)
			}
			if err := h.drivers.Delete(ctx, uid, req.ID); err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(driverResponse{Message: "Driver deleted successfully"})
		},
		handler.WithBinders[handler.Context, idRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, idRequest](handler.NewErrorHandler(h.log)),
	)
}

func (h *handlers) list() http.HandlerFunc {
	return handler.Wrap(
		func(ctx handler.Context, q listQuery) handler.Response {
			uid, err := h.userID(ctx)
			if err != nil {
				return handler.Fail(err)
			}
			f, err := q.filter()
			if err != nil {
				return handler.Fail(err)
			}
			page, err := h.drivers.List(ctx, uid, f)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(page)
		},
		handler.WithBinders[handler.Context, listQuery](binder.Query()),
		handler.WithErrorHandler[handler.Context, listQuery](handler.NewErrorHandler(h.log)),
	)
}

func (h *handlers) stats() http.HandlerFunc {
	return handler.Wrap(
		func(ctx handler.Context, _ struct{}) handler.Response {
			uid, err := h.userID(ctx)
			if err != nil {
				return handler.Fail(err)
			}
			st, err := h.drivers.Stats(ctx, uid)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(dataResponse{Data: st}, handler.WithCacheControl("private, max-age=30"))
		},
		handler.WithErrorHandler[handler.Context, struct{}](handler.NewErrorHandler(h.log)),
	)
}

func (h *handlers) expiring() http.HandlerFunc {
	return handler.Wrap(
		func(ctx handler.Context, q expiringQuery) handler.Response {
			uid, err := h.userID(ctx)
			if err != nil {
				return handler.Fail(err)
			}
			drivers, err := h.drivers.Expiring(ctx, uid, q.Days)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(dataResponse{Data: drivers})
		},
		handler.WithBinders[handler.Context, expiringQuery](binder.Query()),
		handler.WithErrorHandler[handler.Context, expiringQuery](handler.NewErrorHandler(h.log)),
	)
}
