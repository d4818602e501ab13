package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseARGB(t *testing.T) {
	tests := []struct {
		in   string
		want ARGB
		err  bool
	}{
		{"#FFAABBCC", 0xFFAABBCC, false},
		{"#aabbcc", 0xFFAABBCC, false},
		{"0x80112233", 0x80112233, false},
		{"4289374890", 0xFFAAAAAA, false},
		{"#ABC", 0, true},
		{"blue", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseARGB(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestARGBHex(t *testing.T) {
	assert.Equal(t, "#FFAABBCC", ARGB(0xFFAABBCC).Hex())
	assert.Equal(t, "#AABBCC", ARGB(0xFFAABBCC).RGBHex())
}

func TestIcons(t *testing.T) {
	assert.Len(t, Icons, int(IconLiquor)+1)
	id, ok := IconByName("cake")
	assert.True(t, ok)
	assert.Equal(t, IconCake, id)
	assert.Equal(t, "cake", id.String())

	_, ok = IconByName("nope")
	assert.False(t, ok)
	assert.False(t, IconNone.Valid())
	assert.Equal(t, "category", IconID(99).String())
}
