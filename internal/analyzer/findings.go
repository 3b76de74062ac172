// Package analyzer scans Svelte, SvelteKit and Vite sources with line-oriented
// pattern matching and reports what it finds.
package analyzer

// Findings is an ordered mapping of category name to finding strings.
type Findings struct {
	order []string
	items map[string][]string
}

// Add appends items to category, creating it at the end if new.
// Categories with no items are still recorded.
func (f *Findings) Add(category string, items ...string) {
	if f.items == nil {
		f.items = make(map[string][]string)
	}
	if _, ok := f.items[category]; !ok {
		f.order = append(f.order, category)
		f.items[category] = []string{}
	}
	f.items[category] = append(f.items[category], items...)
}

// Categories returns category names in insertion order.
func (f Findings) Categories() []string {
	return append([]string(nil), f.order...)
}

func (f Findings) Items(category string) []string {
	return f.items[category]
}

// Empty reports whether every category is empty.
func (f Findings) Empty() bool {
	for _, items := range f.items {
		if len(items) > 0 {
			return false
		}
	}
	return true
}
