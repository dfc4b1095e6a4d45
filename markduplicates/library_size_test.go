package markduplicates

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
)

func TestEstimateLibrarySize(t *testing.T) {
	tests := []struct {
		reads           uint64
		uniqueMolecules uint64
		expected        uint64
	}{
		{1000000, 800000, 2154184},
		{171512300, 171512299, 14708234445116054},
	}

	for _, test := range tests {
		v, err := estimateLibrarySize(test.reads, test.uniqueMolecules)
		assert.NoError(t, err)
		assert.InEpsilon(t, test.expected, v, 0.0000000001)
	}
}

func TestEstimateLibrarySizeNoDuplicates(t *testing.T) {
	for _, test := range [][2]uint64{{0, 0}, {10, 10}, {10, 11}} {
		_, err := estimateLibrarySize(test[0], test[1])
		assert.True(t, errors.Is(errors.Precondition, err), "%v", test)
	}
}
