package umi

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
)

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"AAA", "AAA", 0},
		{"AAA", "AAT", 1},
		{"AAA", "TTT", 3},
		{"ACGTACGT", "ACGTTCGA", 2},
		{"N", "A", 1},
	}
	for _, test := range tests {
		got, err := HammingDistance(test.s1, test.s2)
		assert.NoError(t, err)
		assert.Equal(t, test.want, got, "%s vs %s", test.s1, test.s2)
		got, err = HammingDistance(test.s2, test.s1)
		assert.NoError(t, err)
		assert.Equal(t, test.want, got, "%s vs %s", test.s2, test.s1)
	}
}

func TestHammingDistanceIncomparable(t *testing.T) {
	for _, pair := range [][2]string{
		{"AAA", "AA"},
		{"A", "AAAA"},
		{"", "AAA"},
		{"AAA", ""},
		{"", ""},
	} {
		d, err := HammingDistance(pair[0], pair[1])
		assert.Error(t, err, "%q vs %q", pair[0], pair[1])
		assert.True(t, IsIncomparable(err))
		assert.False(t, IsMissingClusterMapping(err))
		assert.Equal(t, -1, d)
	}
}

func TestIsIncomparable(t *testing.T) {
	_, err := HammingDistance("AAA", "AA")
	assert.True(t, IsIncomparable(errors.E(err, "clustering umis")))

	assert.False(t, IsIncomparable(nil))
	assert.False(t, IsIncomparable(errors.E(errors.Invalid, "input is not coordinate sorted")))
	assert.False(t, IsIncomparable(errors.New("incomparable barcodes")))
}
