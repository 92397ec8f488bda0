package shm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadTail(t *testing.T) {
	cases := []struct {
		name         string
		mem          string
		stale, fresh string
	}{
		{"empty", "\x00\x00\x00\x00", "", ""},
		{"current only", "ab\n\x00\x00\x00\x00\x00", "", "ab\n"},
		{"stale and current", "bb\n\x00a\n\x00\x00", "a\n", "bb\n"},
		{"stale without terminator", "b\x00aaaa", "aaaa", "b"},
		{"no terminator at all", "abcd", "", "abcd"},
		{"nul is last byte", "abc\x00", "", "abc"},
		{"only first of several stale runs", "c\x00bb\x00aa\x00\x00", "bb", "c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tail := ReadTail([]byte(tc.mem))
			assert.Equal(t, tc.stale, string(tail.Stale))
			assert.Equal(t, tc.fresh, string(tail.Current))
			assert.Equal(t, len(tc.stale)+len(tc.fresh), tail.Len())
		})
	}
}

func TestTail_WriteToOrder(t *testing.T) {
	var buf bytes.Buffer
	n, err := ReadTail([]byte("new\n\x00old\n\x00\x00")).WriteTo(&buf)
	assert.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "old\nnew\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("closed") }

func TestTail_WriteToError(t *testing.T) {
	_, err := ReadTail([]byte("x\x00y\x00")).WriteTo(failingWriter{})
	assert.Error(t, err)
}
