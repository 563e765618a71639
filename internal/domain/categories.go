package domain

// OrderedSet is a string set that remembers first-insertion order.
type OrderedSet struct {
	seen  map[string]struct{}
	items []string
}

func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add inserts v and reports whether it was new.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v was added.
func (s *OrderedSet) Contains(v string) bool {
	_, ok := s.seen[v]
	return ok
}

// Len returns the number of distinct values.
func (s *OrderedSet) Len() int { return len(s.items) }

// Items returns the values in insertion order. The slice is a copy.
func (s *OrderedSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Categories lists each bookmark's category (or DefaultCategory),
// de-duplicated in first-seen order.
func Categories(list []Bookmark) []string {
	set := NewOrderedSet()
	for _, b := range list {
		set.Add(CategoryOrDefault(b.Category))
	}
	return set.Items()
}
