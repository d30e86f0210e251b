package migrationapp

import "fmt"

// SKURegistry deduplicates SKUs within one destination account during a run.
// The platform rejects duplicate SKUs, but source stores frequently carry
// them, so collisions get deterministic numeric suffixes instead of failing
// the product. Owned by a single run; not safe for concurrent use.
type SKURegistry struct {
	used map[string]int
}

// NewSKURegistry creates a registry, optionally pre-seeded with SKUs already
// present on the destination.
func NewSKURegistry(existing ...string) *SKURegistry {
	r := &SKURegistry{used: make(map[string]int, len(existing))}
	for _, sku := range existing {
		r.used[sku] = 1
	}
	return r
}

// Reserve returns the SKU itself if free, otherwise the first suffixed
// variant not yet taken. Empty SKUs pass through untouched since the
// platform does not require them.
func (r *SKURegistry) Reserve(sku string) string {
	if sku == "" {
		return ""
	}
	if _, taken := r.used[sku]; !taken {
		r.used[sku] = 1
		return sku
	}

	for n := r.used[sku]; ; n++ {
		candidate := fmt.Sprintf("%s-%d", sku, n)
		if _, taken := r.used[candidate]; !taken {
			r.used[sku] = n + 1
			r.used[candidate] = 1
			return candidate
		}
	}
}
