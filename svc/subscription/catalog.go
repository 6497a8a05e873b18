package subscription

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// planOrder is the display order of List.
var planOrder = []PlanID{PlanStarter, PlanProfessional, PlanEnterprise}

// Catalog is the immutable set of plans offered. It is built once at startup.
type Catalog struct {
	plans map[PlanID]Plan
}

// NewCatalog validates plans and builds a Catalog. Exactly the starter,
// professional and enterprise plans must be present.
func NewCatalog(plans ...Plan) (*Catalog, error) {
	c := &Catalog{plans: make(map[PlanID]Plan, len(plans))}

	var errs []error
	for _, p := range plans {
		if _, dup := c.plans[p.ID]; dup {
			errs = append(errs, fmt.Errorf("plan %q: duplicate id", p.ID))
			continue
		}
		if !slices.Contains(planOrder, p.ID) {
			errs = append(errs, fmt.Errorf("plan %q: unknown id", p.ID))
			continue
		}
		if p.TrialDays <= 0 {
			errs = append(errs, fmt.Errorf("plan %q: trial days must be positive", p.ID))
		}
		if p.Price < 0 {
			errs = append(errs, fmt.Errorf("plan %q: negative price", p.ID))
		}
		if !p.Features.UnlimitedDrivers && p.Features.MaxDrivers <= 0 {
			errs = append(errs, fmt.Errorf("plan %q: max drivers must be positive", p.ID))
		}
		c.plans[p.ID] = p
	}
	for _, id := range planOrder {
		if _, ok := c.plans[id]; !ok {
			errs = append(errs, fmt.Errorf("plan %q: missing", id))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(append([]error{ErrInvalidCatalog}, errs...)...)
	}
	return c, nil
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadCatalog reads a YAML catalog from path. An empty path loads the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, errors.Join(ErrInvalidCatalog, err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a Catalog from a YAML document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	return NewCatalog(f.Plans...)
}

// DefaultCatalog returns the built-in catalog and panics if it is malformed.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the plan with the given id or ErrInvalidPlan.
func (c *Catalog) Get(id PlanID) (Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, ErrInvalidPlan
	}
	return p, nil
}

// List returns all plans, cheapest first.
func (c *Catalog) List() []Plan {
	out := make([]Plan, 0, len(planOrder))
	for _, id := range planOrder {
		out = append(out, c.plans[id])
	}
	return out
}
