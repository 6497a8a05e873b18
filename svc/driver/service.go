package driver

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/fleetdesk/pkg/logger"
)

const (
	DefaultExpiringWindowDays = 30
	MaxExpiringWindowDays     = 365
)

// Service implements the driver operations of a fleet owner.
type Service struct {
	repo Repository
	now  func() time.Time
	log  *slog.Logger
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, now: time.Now, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("driver"))
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// Create normalizes, validates and stores d for userID.
func (s *Service) Create(ctx context.Context, userID string, d Driver) (*Driver, error) {
	now := s.clock()
	d.Normalize()
	if err := d.Validate(now); err != nil {
		return nil, err
	}

	d.ID = uuid.NewString()
	d.UserID = userID
	d.CreatedAt = now
	d.UpdatedAt = now
	if err := s.repo.Create(ctx, &d); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "driver created",
		logger.UserID(userID),
		slog.String("driver_id", d.ID),
		logger.Status(string(d.Status)),
	)
	return &d, nil
}

// Get returns the driver id owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Driver, error) {
	return s.repo.Get(ctx, userID, id)
}

// Update merges the non-zero fields of changes into the stored driver,
// then normalizes and validates the result before saving it.
func (s *Service) Update(ctx context.Context, userID, id string, changes Driver) (*Driver, error) {
	d, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	d.Merge(changes)
	d.Normalize()
	if err := d.Validate(now); err != nil {
		return nil, err
	}
	d.UpdatedAt = now
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "driver updated",
		logger.UserID(userID),
		slog.String("driver_id", d.ID),
		logger.Status(string(d.Status)),
	)
	return d, nil
}

// Delete removes the driver id owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "driver deleted", logger.UserID(userID), slog.String("driver_id", id))
	return nil
}

// Page is one slice of a listing.
type Page struct {
	Drivers    []Driver   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

func (s *Service) List(ctx context.Context, userID string, f Filter) (*Page, error) {
	f = f.Normalized()
	drivers, total, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if drivers == nil {
		drivers = []Driver{}
	}
	return &Page{
		Drivers: drivers,
		Pagination: Pagination{
			Total: total,
			Page:  f.Page,
			Limit: f.Limit,
			Pages: int64(math.Ceil(float64(total) / float64(f.Limit))),
		},
	}, nil
}

// Stats counts a user's drivers by status and expired license.
type Stats struct {
	Total           int64 `json:"total"`
	Active          int64 `json:"active"`
	Inactive        int64 `json:"inactive"`
	Pending         int64 `json:"pending"`
	ExpiredLicenses int64 `json:"expiredLicenses"`
}

func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	var st Stats
	now := s.clock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Total, err = s.repo.Count(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		st.Active, err = s.repo.CountByStatus(gctx, userID, StatusActive)
		return err
	})
	g.Go(func() (err error) {
		st.Inactive, err = s.repo.CountByStatus(gctx, userID, StatusInactive)
		return err
	})
	g.Go(func() (err error) {
		st.Pending, err = s.repo.CountByStatus(gctx, userID, StatusPending)
		return err
	})
	g.Go(func() (err error) {
		st.ExpiredLicenses, err = s.repo.CountExpiringBefore(gctx, userID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

// Expiring returns drivers whose license runs out within days from now,
// including those already expired, soonest first. The window defaults to
// 30 days and is capped at 365.
func (s *Service) Expiring(ctx context.Context, userID string, days int) ([]Driver, error) {
	if days <= 0 {
		days = DefaultExpiringWindowDays
	}
	days = min(days, MaxExpiringWindowDays)
	drivers, err := s.repo.ExpiringBefore(ctx, userID, s.clock().AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	if drivers == nil {
		drivers = []Driver{}
	}
	return drivers, nil
}
