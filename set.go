package qplot

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Set is a set of ordered values.
type Set[T cmp.Ordered] map[T]struct{}

// FloatSet is a set of float64 values, e.g. the raw levels of a field.
type FloatSet = Set[float64]

// StringSet is a set of strings, e.g. field or aesthetic names.
type StringSet = Set[string]

func NewFloatSet() FloatSet {
	return make(FloatSet)
}

func NewStringSet() StringSet {
	return make(StringSet)
}

func NewStringSetFrom(init []string) StringSet {
	s := NewStringSet()
	for _, v := range init {
		s.Add(v)
	}
	return s
}

func (s Set[T]) String() string {
	parts := make([]string, 0, len(s))
	for _, x := range s.Elements() {
		parts = append(parts, fmt.Sprint(x))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Add adds x to s.
func (s Set[T]) Add(x T) {
	s[x] = struct{}{}
}

// Del removes x from s.
func (s Set[T]) Del(x T) {
	delete(s, x)
}

// Contains reports membership of x in s.
func (s Set[T]) Contains(x T) bool {
	_, ok := s[x]
	return ok
}

// Join adds all elements of t to s.
func (s Set[T]) Join(t Set[T]) {
	for x := range t {
		s[x] = struct{}{}
	}
}

// Remove removes all elements of t from s. (Set difference)
func (s Set[T]) Remove(t Set[T]) {
	for x := range t {
		delete(s, x)
	}
}

// Equals compares s to the elements of t.
func (s Set[T]) Equals(t []T) bool {
	if len(s) != len(t) {
		return false
	}
	for _, x := range t {
		if !s.Contains(x) {
			return false
		}
	}
	return true
}

// Elements returns the elements of s in ascending order.
func (s Set[T]) Elements() []T {
	elems := make([]T, 0, len(s))
	for x := range s {
		elems = append(elems, x)
	}
	slices.Sort(elems)
	return elems
}
