// Package domain models crowd-sourced mood readings and the hierarchical
// spatial index they are stored in.
//
// # Readings
//
// A reading is a mood value on a 1–5 scale plus a location. Readings are
// jittered before submission so the stored point cannot be linked to the
// exact place it was taken (see package submit).
//
// # Cell addresses
//
// The backing index partitions the globe into a hierarchy of cells. A
// [CellAddress] is a string key into that hierarchy:
//
//	"@"        the root cell, covering the whole space
//	"u"        one of 32 top-level cells
//	"u0"       a child of "u"
//	"u0j3..."  up to the codec's maximum precision P
//
// Dropping the last character yields the parent. Addresses of length 1 have the
// root as parent; the root has none.
//
// # Element shapes
//
// A fetch against one cell returns a mix of two shapes, modelled as an explicit
// tagged union ([RawElement] with [ElementKind]):
//
//	Item       a single reading stored at a full-precision address; its id is
//	           the mood as a decimal string.
//	Aggregate  a pre-summed cell-level record standing in for many readings:
//	           count ≥ 1 and a metrics vector of summed dimensions, by default
//	           ordered [mood, lat, lng]. The mean of dimension i is
//	           metrics[i] / count.
//
// # Refresh cycles
//
// A cycle turns a settled viewport into one consistent [Snapshot]: plan the
// covering cells, resolve them against the index with parent escalation,
// classify the elements into markers and areas, and score the viewport.
// Snapshots are replaced wholesale; nothing is patched incrementally.
package domain
