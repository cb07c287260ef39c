package domain

// CellAddress is a hierarchical key into the spatial index. A prefix denotes an
// ancestor region.
type CellAddress string

// RootAddress covers the whole space.
const RootAddress CellAddress = "@"

// IsRoot reports whether a is the root address.
func (a CellAddress) IsRoot() bool {
	return a == RootAddress || a == ""
}

// Len returns the precision of the address; the root has length 0.
func (a CellAddress) Len() int {
	if a.IsRoot() {
		return 0
	}
	return len(a)
}

// Truncate returns the ancestor of a at precision n. n <= 0 yields the root.
func (a CellAddress) Truncate(n int) CellAddress {
	if n <= 0 || a.IsRoot() {
		return RootAddress
	}
	if n >= len(a) {
		return a
	}
	return a[:n]
}

// Parent returns the parent address and false when a is the root.
func (a CellAddress) Parent() (CellAddress, bool) {
	if a.IsRoot() {
		return "", false
	}
	return a.Truncate(len(a) - 1), true
}
