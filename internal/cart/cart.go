// Package cart holds the client-side shopping cart: one line per product
// id, quantity always at least one, totals derived after every mutation.
package cart

import "sync"

// Item identifies what gets added to the cart. Quantity lives on the Line,
// not here.
type Item struct {
	ID       string
	Name     string
	Price    float64
	ImageURL string
}

// Line is one cart entry. Quantity is never below 1: a decrement that
// would reach zero removes the line instead.
type Line struct {
	Item
	Quantity int
}

// Store owns the cart state. All operations are synchronous, total and
// keep TotalItems/TotalPrice consistent with the lines as a postcondition.
type Store struct {
	mu         sync.Mutex
	lines      []Line
	totalItems int
	totalPrice float64
}

func NewStore() *Store {
	return &Store{}
}

// Add inserts a new line or increments the quantity of an existing one.
// Quantities below 1 are clamped to 1.
func (s *Store) Add(item Item, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID == item.ID {
			s.lines[i].Quantity += quantity
			s.recompute()
			return
		}
	}
	s.lines = append(s.lines, Line{Item: item, Quantity: quantity})
	s.recompute()
}

// UpdateQuantity sets a line's quantity to an absolute value. Zero or
// negative removes the line. Unknown ids are a no-op.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(id)
		return
	}
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines[i].Quantity = quantity
			break
		}
	}
	s.recompute()
}

// Remove deletes the line if present; absent ids are a no-op, not an error.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.recompute()
}

// Items returns the lines in insertion order.
func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalItems
}

func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPrice
}

func (s *Store) removeLocked(id string) {
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
	s.recompute()
}

func (s *Store) recompute() {
	items := 0
	price := 0.0
	for _, l := range s.lines {
		items += l.Quantity
		price += l.Price * float64(l.Quantity)
	}
	s.totalItems = items
	s.totalPrice = price
}
