package iteratable

// Set is a set of items, implemented in a rather unsophisticated way, but
// well suited for the algorithms in this module. Sets are iteratable: while
// clients iterate over a set, they may add items to it, and the iteration
// will pick the new items up. This is a common pattern in closure-style
// algorithms ("repeat until no new items appear").
//
// The zero Set is not usable; create sets with NewSet.
type Set struct {
	items   []interface{}
	inx     int  // iteration position, -1 if not iterating
	exhaust bool // if true, iteration removes items
}

// NewSet creates a new set, with a capacity hint.
func NewSet(capacity int) *Set {
	if capacity < 0 {
		capacity = 0
	}
	return &Set{
		items: make([]interface{}, 0, capacity),
		inx:   -1,
	}
}

// Add adds an item to a set, if it is not already present.
func (s *Set) Add(item interface{}) {
	if s == nil || item == nil {
		return
	}
	if s.Contains(item) {
		return
	}
	s.items = append(s.items, item)
}

// Remove removes an item from a set, if present. It returns the item for
// convenience, or nil if the set did not contain it.
func (s *Set) Remove(item interface{}) interface{} {
	if s == nil {
		return nil
	}
	for i, m := range s.items {
		if m == item {
			s.items = append(s.items[:i], s.items[i+1:]...)
			if s.inx >= i {
				s.inx-- // keep iteration position stable
			}
			return m
		}
	}
	return nil
}

// Contains is true if item is contained in the set.
func (s *Set) Contains(item interface{}) bool {
	if s == nil {
		return false
	}
	for _, m := range s.items {
		if m == item {
			return true
		}
	}
	return false
}

// Size returns the number of items in the set.
func (s *Set) Size() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Empty is true if the set contains no items.
func (s *Set) Empty() bool {
	return s.Size() == 0
}

// Equals is true if both sets contain the same items, irrespective of order.
func (s *Set) Equals(other *Set) bool {
	if s.Size() != other.Size() {
		return false
	}
	if s == nil {
		return true // both empty
	}
	for _, m := range s.items {
		if !other.Contains(m) {
			return false
		}
	}
	return true
}

// Copy makes a shallow copy of a set.
func (s *Set) Copy() *Set {
	if s == nil {
		return nil
	}
	c := NewSet(len(s.items))
	c.items = append(c.items, s.items...)
	return c
}

// Union adds all items of other to s. s is destructively changed, other is not.
func (s *Set) Union(other *Set) *Set {
	if s == nil || other == nil {
		return s
	}
	for _, m := range other.items {
		s.Add(m)
	}
	return s
}

// Difference removes all items from s which are contained in other.
// s is destructively changed, other is not.
func (s *Set) Difference(other *Set) *Set {
	if s == nil || other == nil {
		return s
	}
	for _, m := range other.items {
		s.Remove(m)
	}
	return s
}

// Subset destructively reduces s to all items for which predicate returns
// true. It returns s for chaining.
func (s *Set) Subset(predicate func(interface{}) bool) *Set {
	if s == nil {
		return nil
	}
	r := s.items[:0]
	for _, m := range s.items {
		if predicate(m) {
			r = append(r, m)
		}
	}
	s.items = r
	return s
}

// Values returns all items of the set, in insertion order.
func (s *Set) Values() []interface{} {
	if s == nil {
		return []interface{}{}
	}
	return s.items
}

// First returns the first item of the set, in insertion order, or nil for an
// empty set. It stops any iteration in progress.
func (s *Set) First() interface{} {
	if s.Size() == 0 {
		return nil
	}
	s.inx = -1
	return s.items[0]
}

// --- Iteration -------------------------------------------------------------

// IterateOnce starts an iteration over the items of the set. Items added
// during the iteration will be visited, too. The iteration pattern is
//
//	S.IterateOnce()
//	for S.Next() {
//	    item := S.Item()
//	    …
//	}
func (s *Set) IterateOnce() {
	if s == nil {
		return
	}
	s.inx = -1
	s.exhaust = false
}

// Exhaust starts a consuming iteration over the items of the set: every item
// returned by Item is removed from the set.
func (s *Set) Exhaust() {
	if s == nil {
		return
	}
	s.inx = -1
	s.exhaust = true
}

// Next advances the iteration and returns true if an item is available.
func (s *Set) Next() bool {
	if s == nil {
		return false
	}
	if s.exhaust {
		return len(s.items) > 0
	}
	s.inx++
	return s.inx < len(s.items)
}

// Item returns the item at the current iteration position.
func (s *Set) Item() interface{} {
	if s == nil {
		return nil
	}
	if s.exhaust {
		if len(s.items) == 0 {
			return nil
		}
		item := s.items[0]
		s.items = s.items[1:]
		return item
	}
	if s.inx < 0 || s.inx >= len(s.items) {
		return nil
	}
	return s.items[s.inx]
}
