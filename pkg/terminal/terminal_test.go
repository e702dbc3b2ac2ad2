package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWidthNonTerminal(t *testing.T) {
	assert.Positive(t, Width(&bytes.Buffer{}))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestColumnWidths(t *testing.T) {
	assert.Equal(t, []int{10, 49, 49}, ColumnWidths(114, []int{10, 0, 0}))
	assert.Equal(t, []int{4, 5}, ColumnWidths(80, []int{4, 5}))
	assert.Equal(t, []int{10, 10}, ColumnWidths(5, []int{0, 0}))
}
