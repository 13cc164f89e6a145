// Package order produces the variable orderings that a conversion is run
// against. Orderings are produced lazily and always in the same sequence for
// the same input, starting with the input order itself.
package order

import "math"

// Canonical returns the distinct elements of items in order of their first
// occurrence. It is the order that every other ordering is a permutation of.
func Canonical[E comparable](items []E) []E {
	seen := make(map[E]bool, len(items))
	canon := make([]E, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		canon = append(canon, it)
	}
	return canon
}

// Count returns n!, the number of orderings of n distinct elements. If the
// result does not fit in a uint64, math.MaxUint64 is returned.
func Count(n int) uint64 {
	if n < 0 {
		return 0
	}
	total := uint64(1)
	for i := 2; i <= n; i++ {
		if total > math.MaxUint64/uint64(i) {
			return math.MaxUint64
		}
		total *= uint64(i)
	}
	return total
}

// Permutations iterates over every ordering of a fixed set of elements. The
// first ordering is the canonical one; after that orderings follow in
// lexicographic order of element indexes. The zero value is not usable; use
// Enumerate to get one.
type Permutations[E comparable] struct {
	base    []E
	idx     []int
	started bool
	done    bool
}

// Enumerate returns a Permutations over the canonical order of items. Each
// call to Next advances to the following ordering.
func Enumerate[E comparable](items []E) *Permutations[E] {
	p := &Permutations[E]{base: Canonical(items)}
	p.Reset()
	return p
}

// Reset rewinds p so that the next call to Next yields the canonical order.
func (p *Permutations[E]) Reset() {
	p.idx = make([]int, len(p.base))
	for i := range p.idx {
		p.idx[i] = i
	}
	p.started = false
	p.done = false
}

// Len returns the number of distinct elements being ordered.
func (p *Permutations[E]) Len() int {
	return len(p.base)
}

// Next advances p to the next ordering. It returns false once every ordering
// has been produced; it must be called before the first call to Order.
func (p *Permutations[E]) Next() bool {
	if p.done {
		return false
	}
	if !p.started {
		p.started = true
		return true
	}

	// standard next-permutation over the index slice
	i := len(p.idx) - 2
	for i >= 0 && p.idx[i] >= p.idx[i+1] {
		i--
	}
	if i < 0 {
		p.done = true
		return false
	}
	j := len(p.idx) - 1
	for p.idx[j] <= p.idx[i] {
		j--
	}
	p.idx[i], p.idx[j] = p.idx[j], p.idx[i]
	for l, r := i+1, len(p.idx)-1; l < r; l, r = l+1, r-1 {
		p.idx[l], p.idx[r] = p.idx[r], p.idx[l]
	}
	return true
}

// Order returns the current ordering. The returned slice is a fresh copy and
// may be modified by the caller. It returns nil if Next has not yet been
// called or returned false.
func (p *Permutations[E]) Order() []E {
	if !p.started || p.done {
		return nil
	}
	ord := make([]E, len(p.idx))
	for i, x := range p.idx {
		ord[i] = p.base[x]
	}
	return ord
}

// All returns every ordering of items, canonical order first. It should only
// be used when Count(len(Canonical(items))) is known to be small.
func All[E comparable](items []E) [][]E {
	p := Enumerate(items)
	var all [][]E
	for p.Next() {
		all = append(all, p.Order())
	}
	return all
}
