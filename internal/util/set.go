package util

// KeySet is a map[E]bool used as a set. A nil KeySet may be read from but not
// added to.
type KeySet[E comparable] map[E]bool

// StringSet is a KeySet of strings.
type StringSet = KeySet[string]

// NewKeySet creates a new KeySet containing every key of the given maps.
func NewKeySet[E comparable](of ...map[E]bool) KeySet[E] {
	s := KeySet[E]{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

// KeySetOf returns a KeySet containing the given elements. If elements is
// nil, the returned set is nil.
func KeySetOf[E comparable](elements []E) KeySet[E] {
	if elements == nil {
		return nil
	}
	s := make(KeySet[E], len(elements))
	for i := range elements {
		s.Add(elements[i])
	}
	return s
}

// NewStringSet creates a new StringSet containing every key of the given maps.
func NewStringSet(of ...map[string]bool) StringSet {
	return NewKeySet(of...)
}

// StringSetOf returns a StringSet containing the given strings. If sl is nil,
// the returned set is nil.
func StringSetOf(sl []string) StringSet {
	return KeySetOf(sl)
}

func (s KeySet[E]) Has(value E) bool {
	_, has := s[value]
	return has
}

func (s KeySet[E]) Add(value E) {
	s[value] = true
}
