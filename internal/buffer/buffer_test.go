package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextBuffer(t *testing.T) {
	tb := New()
	assert.True(t, tb.Empty())
	assert.Equal(t, "", tb.Flush())

	tb.Write("héllo ")
	tb.Write("")
	tb.Write("wörld 🎉")
	assert.False(t, tb.Empty())
	assert.Equal(t, 13, tb.Runes())

	assert.Equal(t, "héllo wörld 🎉", tb.Flush())
	assert.True(t, tb.Empty())
	assert.Equal(t, 0, tb.Runes())

	tb.Write("again")
	assert.Equal(t, 5, tb.Runes())
	assert.Equal(t, "again", tb.Flush())
}
