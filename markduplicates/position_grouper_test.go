package markduplicates

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setNames returns the read names of each set yielded by iter.
func setNames(t *testing.T, iter DuplicateSetIterator) [][]string {
	var out [][]string
	for iter.Scan() {
		var names []string
		for _, r := range iter.Set() {
			names = append(names, r.Name)
		}
		out = append(out, names)
	}
	return out
}

func TestPositionGrouper(t *testing.T) {
	tests := []struct {
		records  []*sam.Record
		padding  int
		expected [][]string
	}{
		{
			nil,
			10,
			nil,
		},
		{
			[]*sam.Record{
				NewRecord("A", chr1, 0, fwd, cigar0),
				NewRecord("B", chr1, 0, fwd, cigar0),
				NewRecord("C", chr1, 1, fwd, cigarSoft1),
				NewRecord("D", chr1, 1, fwd, cigarHard1),
				NewRecord("E", chr1, 5, fwd, cigar0),
			},
			10,
			[][]string{{"A", "B", "C", "D"}, {"E"}},
		},
		{
			// Reverse reads are keyed by their unclipped end.
			[]*sam.Record{
				NewRecord("F", chr1, 0, fwd, cigar0),
				NewRecord("R1", chr1, 0, rev, cigar0),
				NewRecord("R2", chr1, 1, rev, cigarSoft1),
				NewRecord("R3", chr1, 9, fwd, cigar0),
			},
			10,
			[][]string{{"F"}, {"R1", "R2"}, {"R3"}},
		},
		{
			// Sets are yielded in the order of their first read, not
			// their 5' position.
			[]*sam.Record{
				NewRecord("R1", chr1, 0, rev, cigar0),
				NewRecord("F1", chr1, 5, fwd, cigar0),
				NewRecord("R2", chr1, 8, rev, []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 2)}),
				NewRecord("F2", chr1, 50, fwd, cigar0),
			},
			10,
			[][]string{{"R1", "R2"}, {"F1"}, {"F2"}},
		},
		{
			// References separate sets, and reads that cannot be keyed
			// stand alone.
			[]*sam.Record{
				NewRecord("A", chr1, 100, fwd, cigar0),
				NewRecord("S", chr1, 100, sec, cigar0),
				NewRecord("P", chr1, 100, sam.Supplementary, cigar0),
				NewRecord("B", chr1, 100, fwd, cigar0),
				NewRecord("C", chr2, 100, fwd, cigar0),
				NewRecord("U1", chr2, 100, un, cigar0),
				NewRecord("D", chr2, 100, fwd, cigar0),
				NewRecord("U2", nil, -1, un, nil),
				NewRecord("U3", nil, -1, un, nil),
			},
			10,
			[][]string{{"A", "B"}, {"S"}, {"P"}, {"C", "D"}, {"U1"}, {"U2"}, {"U3"}},
		},
	}
	for i, test := range tests {
		g := NewPositionGrouper(NewSliceRecordIterator(test.records), test.padding)
		assert.Equal(t, test.expected, setNames(t, g), "test %d", i)
		assert.NoError(t, g.Err())
		assert.False(t, g.Scan())
		assert.Nil(t, g.Set())
		assert.NoError(t, g.Close())
	}
}

func TestPositionGrouperErrors(t *testing.T) {
	tests := []struct {
		records []*sam.Record
		padding int
	}{
		{
			// Not sorted.
			[]*sam.Record{
				NewRecord("A", chr1, 10, fwd, cigar0),
				NewRecord("B", chr1, 9, fwd, cigar0),
			},
			10,
		},
		{
			[]*sam.Record{
				NewRecord("A", chr2, 10, fwd, cigar0),
				NewRecord("B", chr1, 20, fwd, cigar0),
			},
			10,
		},
		{
			// Clipping exceeds the padding.
			[]*sam.Record{
				NewRecord("A", chr1, 10, fwd, cigarSoft1),
			},
			0,
		},
	}
	for i, test := range tests {
		g := NewPositionGrouper(NewSliceRecordIterator(test.records), test.padding)
		for g.Scan() {
		}
		err := g.Err()
		require.Error(t, err, "test %d", i)
		assert.True(t, errors.Is(errors.Invalid, err), "test %d: %v", i, err)
		assert.False(t, g.Scan())
		assert.Equal(t, err, g.Close())
	}
}
