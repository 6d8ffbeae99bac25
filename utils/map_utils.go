package utils

import "sort"

func CloneMap[K comparable, V any](m map[K]V) map[K]V {
	cloneM := make(map[K]V)
	for k, v := range m {
		cloneM[k] = v
	}
	return cloneM
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UniqueSlice drops repeated elements in place, keeping first occurrences in order.
func UniqueSlice[K comparable](a []K) []K {
	m := make(map[K]bool)
	for i := 0; i < len(a); {
		v := a[i]
		if !m[v] {
			m[v] = true
			i++
			continue
		}
		a = append(a[:i], a[i+1:]...)
	}
	return a
}

// Difference returns the elements of a not present in b, in a's order.
func Difference[K comparable](a, b []K) []K {
	in := make(map[K]bool, len(b))
	for _, v := range b {
		in[v] = true
	}
	out := make([]K, 0)
	for _, v := range a {
		if !in[v] {
			out = append(out, v)
		}
	}
	return out
}
