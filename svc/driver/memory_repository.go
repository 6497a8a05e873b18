package driver

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryRepository keeps drivers in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	drivers []Driver
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, d *Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(d); err != nil {
		return err
	}
	r.drivers = append(r.drivers, *d)
	return nil
}

// checkUnique compares d against every other stored driver.
func (r *MemoryRepository) checkUnique(d *Driver) error {
	for _, existing := range r.drivers {
		if existing.ID == d.ID {
			continue
		}
		if existing.Email == d.Email {
			return ErrDuplicateEmail
		}
		if existing.LicenseNumber == d.LicenseNumber {
			return ErrDuplicateLicense
		}
	}
	return nil
}

func (r *MemoryRepository) index(userID, id string) int {
	return slices.IndexFunc(r.drivers, func(d Driver) bool {
		return d.ID == id && d.UserID == userID
	})
}

func (r *MemoryRepository) Get(_ context.Context, userID, id string) (*Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(userID, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	d := r.drivers[i]
	return &d, nil
}

func (r *MemoryRepository) Update(_ context.Context, d *Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(d.UserID, d.ID)
	if i < 0 {
		return ErrNotFound
	}
	if err := r.checkUnique(d); err != nil {
		return err
	}
	r.drivers[i] = *d
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(userID, id)
	if i < 0 {
		return ErrNotFound
	}
	r.drivers = slices.Delete(r.drivers, i, i+1)
	return nil
}

func (r *MemoryRepository) owned(userID string, keep func(Driver) bool) []Driver {
	var out []Driver
	for _, d := range r.drivers {
		if d.UserID == userID && keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func (r *MemoryRepository) List(_ context.Context, userID string, f Filter) ([]Driver, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f = f.Normalized()
	matched := r.owned(userID, func(d Driver) bool {
		return f.Status == "" || d.Status == f.Status
	})
	slices.SortStableFunc(matched, func(a, b Driver) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := int64(len(matched))
	start := min(f.skip(), len(matched))
	end := min(start+f.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r *MemoryRepository) Count(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.owned(userID, func(Driver) bool { return true }))), nil
}

func (r *MemoryRepository) CountByStatus(_ context.Context, userID string, status Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.owned(userID, func(d Driver) bool { return d.Status == status }))), nil
}

func (r *MemoryRepository) ExpiringBefore(_ context.Context, userID string, until time.Time) ([]Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.owned(userID, func(d Driver) bool { return d.LicenseExpiry.Before(until) })
	slices.SortStableFunc(out, func(a, b Driver) int {
		return cmp.Compare(a.LicenseExpiry.UnixNano(), b.LicenseExpiry.UnixNano())
	})
	return out, nil
}

func (r *MemoryRepository) CountExpiringBefore(_ context.Context, userID string, until time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.owned(userID, func(d Driver) bool { return d.LicenseExpiry.Before(until) }))), nil
}
