// Package taxonomy defines the closed classification axes shared by framework
// tag profiles and normalized startup contexts.
//
// Every axis is a string-backed enum with a fixed member list. Raw strings are
// only accepted through the Parse functions in this package; everything
// downstream of the context normalizer works with canonical members.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Resolution records how a raw string was mapped onto an axis member.
type Resolution string

const (
	ResolvedExact Resolution = "exact"
	ResolvedAlias Resolution = "alias"
	ResolvedFuzzy Resolution = "fuzzy"
	Unclassified  Resolution = "unclassified"
)

// Resolved reports whether the lookup produced a member.
func (r Resolution) Resolved() bool {
	return r != Unclassified && r != ""
}

// Canonical lowercases s, trims it and folds '-', '/' and whitespace runs into
// single underscores.
func Canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		switch r {
		case '-', '/', ' ', '\t', '_', '.':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func squash(s string) string {
	return strings.ReplaceAll(s, "_", "")
}

// axis is the lookup table for one enum.
type axis[T ~string] struct {
	name    string
	members []T
	aliases map[string]T
}

func (a axis[T]) lookup(raw string) (T, Resolution) {
	var zero T
	key := Canonical(raw)
	if key == "" {
		return zero, Unclassified
	}
	for _, m := range a.members {
		if string(m) == key {
			return m, ResolvedExact
		}
	}
	if m, ok := a.aliases[key]; ok {
		return m, ResolvedAlias
	}

	// Separator-insensitive match ("seriesa", "b2bsaas").
	sq := squash(key)
	for _, m := range a.members {
		if squash(string(m)) == sq {
			return m, ResolvedFuzzy
		}
	}
	for _, alias := range sortedKeys(a.aliases) {
		if squash(alias) == sq {
			return a.aliases[alias], ResolvedFuzzy
		}
	}

	// Containment ("pre_seed_round", "saas_platform"): the longest contained
	// member or alias wins; a tie between different members stays unclassified.
	var found T
	best, tied := 0, false
	consider := func(label string, m T) {
		l := len(squash(label))
		if l < 4 || !strings.Contains(sq, squash(label)) {
			return
		}
		switch {
		case l > best:
			found, best, tied = m, l, false
		case l == best && m != found:
			tied = true
		}
	}
	for _, m := range a.members {
		consider(string(m), m)
	}
	for _, alias := range sortedKeys(a.aliases) {
		consider(alias, a.aliases[alias])
	}
	if best > 0 && !tied {
		return found, ResolvedFuzzy
	}
	return zero, Unclassified
}

// strict accepts only exact members and aliases; catalog data goes through it.
func (a axis[T]) strict(raw string) (T, error) {
	m, res := a.lookup(raw)
	if res != ResolvedExact && res != ResolvedAlias {
		var zero T
		return zero, fmt.Errorf("unknown %s %q", a.name, raw)
	}
	return m, nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set is an ordered, duplicate-free collection of axis members.
type Set[T ~string] []T

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	for _, m := range s {
		if m == v {
			return true
		}
	}
	return false
}

// Add appends v when it is not already present.
func (s Set[T]) Add(v T) Set[T] {
	if s.Has(v) {
		return s
	}
	return append(s, v)
}

// Strings returns the members as plain strings.
func (s Set[T]) Strings() []string {
	out := make([]string, len(s))
	for i, m := range s {
		out[i] = string(m)
	}
	return out
}

// parseSet parses every value strictly, dropping duplicates.
func parseSet[T ~string](a axis[T], raw []string) (Set[T], error) {
	var out Set[T]
	for _, r := range raw {
		m, err := a.strict(r)
		if err != nil {
			return nil, err
		}
		out = out.Add(m)
	}
	return out, nil
}
