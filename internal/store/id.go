package store

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"
)

// NewID produces a collision-resistant opaque id: the current millisecond
// timestamp in base 36 followed by a random base-36 tail. Multiple contexts
// (popup, background, page sidebar) generate ids without coordination, so a
// counter is not an option; the time prefix keeps ids roughly sortable and the
// random tail carries the entropy.
func NewID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	var b [8]byte
	rand.Read(b[:])
	tail := strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 36)

	return ts + tail
}
