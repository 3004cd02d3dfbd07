// Package textutil provides text tokenization and similarity primitives.
//
// Titles are compared by building term-frequency fingerprints and taking
// their cosine similarity, which yields a score in [0,1] that is stable
// under word reordering and duplicate whitespace.
package textutil
