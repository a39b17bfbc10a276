package uniuri

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLen(t *testing.T) {
	for _, n := range []int{1, 16, 20, 200} {
		s := NewLen(n)
		assert.Len(t, s, n)

		for _, r := range s {
			assert.True(t, strings.ContainsRune(string(StdChars), r), "unexpected %q", r)
		}
	}

	assert.Empty(t, NewLen(0))
	assert.NotEqual(t, NewLen(32), NewLen(32))
}

func TestNewLenChars(t *testing.T) {
	s := NewLenChars(100, []byte("ab"))
	assert.Len(t, s, 100)
	assert.Empty(t, strings.Trim(s, "ab"))

	assert.Panics(t, func() { NewLenChars(3, []byte("a")) })
}
