package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmapProviderReturnsPageAlignedMemory(t *testing.T) {
	p := NewMmapProvider()
	page, err := p.AllocPages(1)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Zero(t, uintptr(page)%p.PageSize())
	require.NoError(t, p.FreePages(page, 1))
}

func TestMmapProviderRejectsNonPositiveCount(t *testing.T) {
	p := NewMmapProvider()
	_, err := p.AllocPages(0)
	assert.Error(t, err)
}

func TestMmapProviderMemoryIsWritableAndIsolatedAcrossMappings(t *testing.T) {
	p := NewMmapProvider()
	a, err := p.AllocPages(1)
	require.NoError(t, err)
	b, err := p.AllocPages(1)
	require.NoError(t, err)

	*(*byte)(a) = 0x42
	assert.Equal(t, byte(0x42), *(*byte)(a))
	assert.Zero(t, *(*byte)(b))

	require.NoError(t, p.FreePages(a, 1))
	require.NoError(t, p.FreePages(b, 1))
}

func TestMmapProviderFreePagesRejectsNil(t *testing.T) {
	p := NewMmapProvider()
	assert.Error(t, p.FreePages(nil, 1))
}
