package uniuri

import (
	"crypto/rand"
)

// StdChars are the characters NewLen draws from.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// readChunk is how many random bytes are fetched per crypto/rand call.
const readChunk = 64

// NewLen returns a random string of length StdChars.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// NewLenChars returns a random string of length drawn uniformly from chars.
// It panics when chars has fewer than 2 or more than 256 entries.
func NewLenChars(length int, chars []byte) string {
	if length <= 0 {
		return ""
	}

	n := len(chars)
	if n < 2 || n > 256 {
		panic("uniuri: charset must hold 2 to 256 characters")
	}

	// bytes at or above limit would bias the modulo
	limit := 256 - 256%n
	out := make([]byte, 0, length)
	buf := make([]byte, readChunk)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: " + err.Error())
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])

			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}
