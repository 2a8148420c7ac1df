// Package memory provides pooled storage for values owned by
// shared.Handle, and epoch-based deferred reclamation for values that may
// still be read through raw pointers after their last owner let go.
//
// A Pool is itself a shared.Deleter: the last owner of a pooled value
// hands it back. A Retirer parks released values in a RetireRing instead,
// and AdvanceEpochAndReclaim moves them into the pool once no Reader is
// inside a read section.
//
// Apart from the handle type the package is dependency-free.
package memory
