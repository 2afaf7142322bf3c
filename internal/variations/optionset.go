package variations

import (
	"bytes"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// OptionSet is an order-independent set of option ids, kept sorted so two
// sets can be compared element by element.
type OptionSet []uuid.UUID

// NewOptionSet returns a sorted copy of ids
func NewOptionSet(ids ...uuid.UUID) OptionSet {
	set := make(OptionSet, len(ids))
	copy(set, ids)
	sort.Slice(set, func(i, j int) bool {
		return bytes.Compare(set[i][:], set[j][:]) < 0
	})
	return set
}

// Equal reports whether both sets hold the same ids
func (s OptionSet) Equal(other OptionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether id is part of the set
func (s OptionSet) Contains(id uuid.UUID) bool {
	i := sort.Search(len(s), func(i int) bool {
		return bytes.Compare(s[i][:], id[:]) >= 0
	})
	return i < len(s) && s[i] == id
}

// Key is the canonical string form of the set, used as a map key and as the
// unique option_key column.
func (s OptionSet) Key() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// OptionKey returns the canonical key for ids in any order
func OptionKey(ids []uuid.UUID) string {
	return NewOptionSet(ids...).Key()
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
