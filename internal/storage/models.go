package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Blueprint is a stored, shareable configuration template. Content may
// contain [[NAME]] / [[NAME|default]] variable placeholders which are
// resolved at download time, never at rest.
type Blueprint struct {
	ID          string
	Title       string
	Description string
	Content     string
	Platform    string // target platform id, empty for platform-agnostic
	Author      string
	Defaults    string // JSON object of author-supplied variable defaults
	PriceCents  int
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SavedVariable is a user-saved substitution value. Keys are normalized
// to uppercase [A-Z0-9_]+ before storage.
type SavedVariable struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Purchase records a blueprint acquisition. Settlement happens in the
// external billing provider; this is the local ledger entry only.
type Purchase struct {
	ID          string
	BlueprintID string
	PriceCents  int
	CreatedAt   time.Time
}
