package database

import "errors"

// Domain-level database error sentinels.
var (
	ErrRunNotFound       = errors.New("run not found")
	ErrBriefNotFound     = errors.New("brief not found")
	ErrExclusionNotFound = errors.New("exclusion not found")
	ErrNotSuggestion     = errors.New("exclusion is not a pending suggestion")
	ErrAmbiguousID       = errors.New("ambiguous id prefix")
)
