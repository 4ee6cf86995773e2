package ids

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a lexicographically sortable identifier. ULIDs encode their
// creation time in the prefix, which gives list pagination a stable
// secondary ordering key for free.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Valid reports whether raw is a well-formed identifier.
func Valid(raw string) bool {
	_, err := ulid.ParseStrict(raw)
	return err == nil
}
