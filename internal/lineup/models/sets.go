package models

import (
	"slices"
	"sort"
)

// IDSet is an unordered set of integer identifiers. Reads through Sorted are
// always ascending.
type IDSet[T ~int] map[T]struct{}

// YearSet holds seasons; Sorted returns them ascending.
type YearSet = IDSet[Year]

// Add inserts v and reports whether it was new.
func (s IDSet[T]) Add(v T) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

func (s IDSet[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

func (s IDSet[T]) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order.
func (s IDSet[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Min returns the smallest member.
func (s IDSet[T]) Min() (T, bool) {
	var lo T
	first := true
	for v := range s {
		if first || v < lo {
			lo = v
			first = false
		}
	}
	return lo, !first
}

// AnyWithin reports whether some member lies in the inclusive range [lo, hi].
func (s IDSet[T]) AnyWithin(lo, hi T) bool {
	for v := range s {
		if v >= lo && v <= hi {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s IDSet[T]) Clone() IDSet[T] {
	out := make(IDSet[T], len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// OrderedSet keeps the first-seen order of its members and suppresses duplicates.
// The zero value is ready to use.
type OrderedSet[T comparable] struct {
	items []T
	seen  map[T]struct{}
}

// Add appends v unless already present and reports whether it was new.
func (o *OrderedSet[T]) Add(v T) bool {
	if o.seen == nil {
		o.seen = make(map[T]struct{})
	}
	if _, ok := o.seen[v]; ok {
		return false
	}
	o.seen[v] = struct{}{}
	o.items = append(o.items, v)
	return true
}

func (o *OrderedSet[T]) Has(v T) bool {
	_, ok := o.seen[v]
	return ok
}

func (o *OrderedSet[T]) Len() int {
	return len(o.items)
}

// Items returns a copy of the members in insertion order.
func (o *OrderedSet[T]) Items() []T {
	return slices.Clone(o.items)
}

// PairKeySet is a set of canonical pair keys. Sorted orders by (Low, High).
type PairKeySet map[PairKey]struct{}

func (s PairKeySet) Add(k PairKey) bool {
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}

func (s PairKeySet) Has(k PairKey) bool {
	_, ok := s[k]
	return ok
}

func (s PairKeySet) Len() int {
	return len(s)
}

func (s PairKeySet) Sorted() []PairKey {
	out := make([]PairKey, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
