package psl

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// selectorTable is a perfect hash over the catalogue names: every name maps
// to its own slot of slots, and slots holds the operation stored there.
type selectorTable struct {
	slots []OpID
	size  uint64
}

const emptySlot OpID = -1

// aliases are extra selectors for catalogue operations. They resolve to the
// aliased descriptor, so Descriptor.Name is always the canonical name.
var aliases = map[string]OpID{
	"bessel": OpBesselJ0,
}

// searchFactor bounds how far beyond len(catalogue) the table size search
// may go before the catalogue is declared unhashable.
const searchFactor = 64

var selectors = buildSelectorTable()

func selectorKey(s string) uint64 {
	return xxhash.Sum64String(s)
}

// buildSelectorTable finds the smallest table size at which all catalogue
// names occupy distinct slots. A catalogue that cannot be placed is a
// programming error and panics during package initialisation.
func buildSelectorTable() selectorTable {
	n := uint64(len(catalogue))
	for size := n; size <= n*searchFactor; size++ {
		slots := make([]OpID, size)
		for i := range slots {
			slots[i] = emptySlot
		}
		ok := true
		for i := range catalogue {
			slot := selectorKey(catalogue[i].Name) % size
			if slots[slot] != emptySlot {
				ok = false
				break
			}
			slots[slot] = OpID(i)
		}
		if ok {
			return selectorTable{slots: slots, size: size}
		}
	}
	panic(fmt.Sprintf("psl: no collision-free selector table within %d slots", n*searchFactor))
}

// Resolve maps a selector or an alias to its operation. It reports false
// for any other string, including strings whose hash lands on an occupied
// slot.
func Resolve(selector string) (*Descriptor, bool) {
	id := selectors.slots[selectorKey(selector)%selectors.size]
	if id == emptySlot || catalogue[id].Name != selector {
		if alias, ok := aliases[selector]; ok {
			return &catalogue[alias], true
		}
		return nil, false
	}
	return &catalogue[id], true
}

// ResolveOrDefault resolves selector, binding DefaultOp when it is unknown.
// The second result reports whether the fallback was taken.
func ResolveOrDefault(selector string) (*Descriptor, bool) {
	if d, ok := Resolve(selector); ok {
		return d, false
	}
	return &catalogue[DefaultOp], true
}
