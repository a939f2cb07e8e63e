package domain

import "errors"

var (
	// ErrInvalidInput signals a malformed query: empty word list, empty
	// string entries, or a non-positive result count.
	ErrInvalidInput = errors.New("invalid input")
	// ErrVocabularyMiss signals that none of the query words resolved to a
	// vocabulary entry.
	ErrVocabularyMiss = errors.New("none of the provided words were found in the vocabulary")
	// ErrNoCandidates signals that no eligible rows remained after excluding
	// the query words.
	ErrNoCandidates = errors.New("no related words found after excluding input words")
)
