// Package models defines the core domain models for Bayad Buddy.
//
// # Model Groups
//
//   - Person, Item, Discount: the live session inputs, exclusively owned by the
//     active session
//   - PersonShare, PersonResult: the derived split breakdown, recomputed from
//     scratch whenever any input changes
//   - Bill: a saved history entry holding its own deep copy of results
//   - ScannedItem: a candidate produced by the receipt-scan boundary
//
// # Design Principles
//
// 1. **Value semantics**: derived and saved data is cloned, never aliased, so a
// saved Bill is fully decoupled from later session mutation
// 2. **ID strings instead of pointers**: relationships are expressed as opaque
// string ids to avoid circular references
// 3. **JSON as the storage codec**: every model carries json tags; the same shape
// is written to the key-value store and returned by the API
package models
