package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	p := New(2, 24, 50)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = New(1, 24, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestStorefrontPerPage(t *testing.T) {
	assert.Equal(t, 36, StorefrontPerPage(36))
	assert.Equal(t, 48, StorefrontPerPage(48))
	assert.Equal(t, 24, StorefrontPerPage(0))
	assert.Equal(t, 24, StorefrontPerPage(100))
}

func TestPageAndOffset(t *testing.T) {
	assert.Equal(t, 1, Page(-3))
	assert.Equal(t, 0, Offset(0, 24))
	assert.Equal(t, 48, Offset(3, 24))
	assert.Equal(t, 20, Limit(500))
	assert.Equal(t, 5, Limit(5))
}
