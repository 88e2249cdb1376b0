// internal/daily/daily.go
//
// Daily puzzle selection.
// Every server with the same salt and catalog serves the same board on the
// same UTC date, without storing anything.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Index returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Pick returns the item for date, and false when items is empty.
func Pick[T any](items []T, date time.Time, salt string) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[Index(date, salt, len(items))], true
}
