package transfer

import (
	"fmt"
	"strings"
	"time"
)

// ObjectName derives the internal storage name for an uploaded file:
// "{unixMillis}-{filename}". The filename is embedded as supplied by the
// caller; ValidFilename gates what may reach here.
//
// Uniqueness is probabilistic by time, not transactionally guaranteed: two
// uploads of the same filename in the same millisecond collide. There is no
// coordinating database to do better, and the collision window is accepted.
func ObjectName(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), filename)
}

// ValidFilename reports whether a caller-supplied filename may name a
// storage object. Object keys become path elements on path-based stores,
// so separators and dot segments would let a key resolve outside the
// container.
func ValidFilename(filename string) bool {
	if filename == "" || filename == "." || filename == ".." {
		return false
	}
	return !strings.ContainsAny(filename, "/\\\x00")
}
