package markduplicates

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
)

func TestUnclippedFivePrimePosition(t *testing.T) {
	tests := []struct {
		r         *sam.Record
		start     int
		end       int
		fivePrime int
	}{
		{NewRecord("A", chr1, 10, fwd, cigar0), 10, 19, 10},
		{NewRecord("B", chr1, 10, rev, cigar0), 10, 19, 19},
		{NewRecord("C", chr1, 10, fwd, cigarSoft1), 9, 18, 9},
		{NewRecord("D", chr1, 10, rev, cigarHard1), 9, 18, 18},
		{NewRecord("E", chr1, 0, fwd, cigarSoft1), -1, 8, -1},
	}
	for _, test := range tests {
		assert.Equal(t, test.start, unclippedStart(test.r), test.r.Name)
		assert.Equal(t, test.end, unclippedEnd(test.r), test.r.Name)
		assert.Equal(t, test.fivePrime, unclippedFivePrimePosition(test.r), test.r.Name)
	}
}

func TestTags(t *testing.T) {
	r := NewRecord("A", chr1, 10, fwd, cigar0)
	r.AuxFields = sam.AuxFields{NewAux("RG", "rg"), NewAux("XN", 3)}

	_, ok := getStringTag(r, rxTag)
	assert.False(t, ok)
	// Non-string values are treated as missing.
	_, ok = getStringTag(r, sam.NewTag("XN"))
	assert.False(t, ok)

	assert.NoError(t, setTag(r, rxTag, "ACGT"))
	s, ok := getStringTag(r, rxTag)
	assert.True(t, ok)
	assert.Equal(t, "ACGT", s)

	assert.NoError(t, setTag(r, rxTag, "TTTT"))
	s, _ = getStringTag(r, rxTag)
	assert.Equal(t, "TTTT", s)
	assert.Equal(t, 3, len(r.AuxFields))
	assert.Equal(t, NewAux("RG", "rg"), r.AuxFields[0])

	assert.NoError(t, setTag(r, diTag, 7))
	assert.Equal(t, NewAux("DI", 7), r.AuxFields.Get(diTag))
}
