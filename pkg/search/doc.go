// Package search ranks an in-memory candidate set against a free-text query.
//
// A search runs linearly: the raw query is typo-corrected, normalized and
// expanded through the lexicon's concept graph; every candidate is then
// scored by summing fixed weights for exact, partial, semantic, fuzzy and
// tag signals; candidates with a positive score are sorted (stable on input
// order) and truncated; finally a few follow-up suggestions are derived.
//
// An Engine holds only immutable data and is safe for concurrent use. It
// performs no I/O and never returns an error: bad input yields an empty
// result.
package search
