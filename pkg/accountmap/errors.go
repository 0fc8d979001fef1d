package accountmap

import "errors"

var (
	// ErrEmptySeed is returned by a Source whose document has no nameToAccount object.
	ErrEmptySeed = errors.New("accountmap: seed has no nameToAccount")
	// ErrInvalidPair is returned by Upsert for an empty name or account.
	ErrInvalidPair = errors.New("accountmap: name and account are required")
)
