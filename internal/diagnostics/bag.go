package diagnostics

import "fmt"

// Bag collects diagnostics for one module pass in report order,
// deduplicating repeats at the same position with the same code. The bag
// is caller-supplied and lives for the duration of the pass.
type Bag struct {
	file  string
	items []*Diagnostic
	seen  map[string]bool
}

// NewBag creates an empty bag. file is stamped onto every diagnostic that
// does not already carry one.
func NewBag(file string) *Bag {
	return &Bag{file: file, seen: make(map[string]bool)}
}

// Add records a diagnostic unless an identical position+code entry exists.
func (b *Bag) Add(d *Diagnostic) {
	if d.File == "" {
		d.File = b.file
	}
	key := fmt.Sprintf("%d:%d:%s", d.Token.Line, d.Token.Column, d.Code)
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.items = append(b.items, d)
}

// All returns the collected diagnostics in report order.
func (b *Bag) All() []*Diagnostic {
	return b.items
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// HasErrors reports whether any collected diagnostic is error severity.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
