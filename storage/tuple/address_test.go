package tuple

import (
	"sort"
	"testing"

	"github.com/HayatoShiba/ppheap/common"
	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	rel := common.Relation("student")
	tests := []struct {
		name     string
		a        Address
		b        Address
		expected int
	}{
		{
			name:     "smaller page id comes first",
			a:        NewAddress(rel, 0, 100),
			b:        NewAddress(rel, 1, 0),
			expected: -1,
		},
		{
			name:     "smaller offset comes first in the same page",
			a:        NewAddress(rel, 2, 48),
			b:        NewAddress(rel, 2, 24),
			expected: 1,
		},
		{
			name:     "same address",
			a:        NewAddress(rel, 2, 24),
			b:        NewAddress(rel, 2, 24),
			expected: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compare(tt.a, tt.b))
			assert.Equal(t, tt.expected < 0, Less(tt.a, tt.b))
		})
	}
}

func TestSortAddresses(t *testing.T) {
	rel := common.Relation("student")
	addrs := []Address{
		NewAddress(rel, 1, 24),
		NewAddress(rel, 0, 52),
		NewAddress(rel, 1, 0),
		NewAddress(rel, 0, 4),
	}
	sort.Slice(addrs, func(i, j int) bool { return Less(addrs[i], addrs[j]) })
	expected := []Address{
		NewAddress(rel, 0, 4),
		NewAddress(rel, 0, 52),
		NewAddress(rel, 1, 0),
		NewAddress(rel, 1, 24),
	}
	assert.Equal(t, expected, addrs)
}
