package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hello", Truncate("hello", 0))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	// "价" is three bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "a...", Truncate("a价格", 2))
	assert.Equal(t, "a价...", Truncate("a价格", 4))
}
