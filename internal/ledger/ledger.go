// Package ledger keeps the ordered line items of a single invoice.
//
// The order of items is the print order. Every mutation that touches
// quantity or rate recomputes the item amount before returning, so a stale
// amount is never observable. Operations on an unknown item id are no-ops.
package ledger

import (
	"fmt"

	"invoicer/internal/model"

	"github.com/google/uuid"
)

// Field names accepted by Update
const (
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldRate        = "rate"
)

// Ledger is not safe for concurrent use; an invoice is edited by one session at a time.
type Ledger struct {
	items []model.LineItem
	newID func() string
}

// Option customizes a Ledger
type Option func(*Ledger)

// WithIDGenerator replaces the uuid generator used for new item ids
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) {
		l.newID = fn
	}
}

// New returns an empty ledger
func New(opts ...Option) *Ledger {
	l := &Ledger{newID: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromItems builds a ledger from submitted items, keeping their order.
// Items without an id get one and every amount is recomputed; a
// client-supplied amount is ignored.
func FromItems(items []model.LineItem, opts ...Option) *Ledger {
	l := New(opts...)
	l.items = make([]model.LineItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			it.ID = l.newID()
		}
		it.Amount = it.Quantity * it.Rate
		l.items = append(l.items, it)
	}
	return l
}

// Items returns a copy of the current items in display order
func (l *Ledger) Items() []model.LineItem {
	out := make([]model.LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len reports the number of items
func (l *Ledger) Len() int {
	return len(l.items)
}

// Insert appends a new item with quantity 1 and rate 0
func (l *Ledger) Insert() model.LineItem {
	item := model.LineItem{
		ID:       l.newID(),
		Quantity: 1,
		Rate:     0,
		Amount:   0,
	}
	l.items = append(l.items, item)
	return item
}

// Update sets one field on the item with the given id.
// Description takes a string; quantity and rate take a float64 (an int is
// accepted too). It reports whether an item was found. An unknown field or a
// value of the wrong type is an error even when the id is unknown.
func (l *Ledger) Update(id, field string, value any) (bool, error) {
	switch field {
	case FieldDescription:
		s, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("description must be a string, got %T", value)
		}
		return l.apply(id, func(it *model.LineItem) { it.Description = s }), nil
	case FieldQuantity:
		q, err := toNumber(value)
		if err != nil {
			return false, fmt.Errorf("quantity: %w", err)
		}
		return l.apply(id, func(it *model.LineItem) { it.Quantity = q }), nil
	case FieldRate:
		r, err := toNumber(value)
		if err != nil {
			return false, fmt.Errorf("rate: %w", err)
		}
		return l.apply(id, func(it *model.LineItem) { it.Rate = r }), nil
	default:
		return false, fmt.Errorf("unknown line item field %q", field)
	}
}

// Remove deletes the item. Removing the last item is allowed.
func (l *Ledger) Remove(id string) bool {
	idx := l.indexOf(id)
	if idx < 0 {
		return false
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return true
}

// Reorder moves the item to newIndex and shifts the others.
// newIndex is clamped to the valid range.
func (l *Ledger) Reorder(id string, newIndex int) bool {
	from := l.indexOf(id)
	if from < 0 {
		return false
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(l.items)-1 {
		newIndex = len(l.items) - 1
	}
	if from == newIndex {
		return true
	}

	item := l.items[from]
	l.items = append(l.items[:from], l.items[from+1:]...)
	l.items = append(l.items[:newIndex], append([]model.LineItem{item}, l.items[newIndex:]...)...)
	return true
}

// Get returns the item with the given id
func (l *Ledger) Get(id string) (model.LineItem, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return model.LineItem{}, false
	}
	return l.items[idx], true
}

func (l *Ledger) apply(id string, fn func(*model.LineItem)) bool {
	idx := l.indexOf(id)
	if idx < 0 {
		return false
	}
	it := &l.items[idx]
	fn(it)
	it.Amount = it.Quantity * it.Rate
	return true
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
