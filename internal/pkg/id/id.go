package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string from crypto/rand entropy. Upload ids double
// as S3 object names and DynamoDB keys, so they must be unguessable and unique;
// 80 random bits per millisecond make collisions negligible.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
