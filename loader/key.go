package loader

import (
	"encoding/binary"
	"time"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Key identifies a file version: its URL and modification time
type Key uint64

// NewKey hashes a file identity
func NewKey(URL string, modTime time.Time) (Key, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	if _, err = hash.Write([]byte(URL)); err != nil {
		return 0, err
	}
	stamp := make([]byte, 9) // separator and nanoseconds
	binary.BigEndian.PutUint64(stamp[1:], uint64(modTime.UnixNano()))
	_, err = hash.Write(stamp)
	return Key(hash.Sum64()), err
}
