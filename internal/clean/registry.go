package clean

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/marketing-cli/internal/warehouse"
)

// Registry maps dataset names to their cleaners.
type Registry struct {
	datasets map[string]Dataset
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry populated with all five datasets.
func NewRegistry() *Registry {
	r := &Registry{
		datasets: make(map[string]Dataset),
	}

	r.Register(EmailCampaigns{})
	r.Register(PaidAds{})
	r.Register(SocialPosts{})
	r.Register(Transactions{})
	r.Register(Customers{})

	return r
}

// Register adds a dataset to the registry.
func (r *Registry) Register(d Dataset) {
	name := d.Name()
	if _, ok := r.datasets[name]; !ok {
		r.order = append(r.order, name)
	}
	r.datasets[name] = d
}

// Get returns a dataset by name.
func (r *Registry) Get(name string) (Dataset, error) {
	d, ok := r.datasets[name]
	if !ok {
		return nil, eris.Errorf("clean: unknown dataset %q (valid: %v)", name, r.order)
	}
	return d, nil
}

// Select returns the named datasets in the order given, or every dataset
// when names is empty.
func (r *Registry) Select(names []string) ([]Dataset, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	seen := make(map[string]bool, len(names))
	var result []Dataset
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		d, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

// All returns all datasets in registration order.
func (r *Registry) All() []Dataset {
	result := make([]Dataset, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.datasets[name])
	}
	return result
}

// AllNames returns all registered dataset names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// StagingSpecs returns the staging table of every dataset, for migrations.
func (r *Registry) StagingSpecs() []warehouse.StagingSpec {
	specs := make([]warehouse.StagingSpec, 0, len(r.order))
	for _, d := range r.All() {
		specs = append(specs, d.Staging())
	}
	return specs
}
