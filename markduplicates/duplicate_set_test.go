package markduplicates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBAMRecordIterator(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := filepath.Join(tempDir, "in.bam")
	WriteRecords(t, path, header, []*sam.Record{
		NewRecordUmi("A", chr1, 0, fwd, cigar0, "AAA"),
		NewRecordUmi("B", chr1, 5, rev, cigar0, "CCC"),
		NewRecordUmi("C", chr2, 1, fwd, cigar0, ""),
	})

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close() // nolint: errcheck
	reader, err := bam.NewReader(in, 1)
	require.NoError(t, err)

	iter := NewBAMRecordIterator(reader)
	var names []string
	for iter.Scan() {
		names = append(names, iter.Record().Name)
	}
	assert.NoError(t, iter.Err())
	assert.Equal(t, []string{"A", "B", "C"}, names)
	assert.False(t, iter.Scan())
	assert.Nil(t, iter.Record())
	assert.NoError(t, iter.Close())
}

func TestSliceIterators(t *testing.T) {
	recs := []*sam.Record{
		NewRecord("A", chr1, 0, fwd, cigar0),
		NewRecord("B", chr1, 1, fwd, cigar0),
	}
	ri := NewSliceRecordIterator(recs)
	for _, r := range recs {
		require.True(t, ri.Scan())
		assert.Equal(t, r, ri.Record())
	}
	assert.False(t, ri.Scan())
	assert.Nil(t, ri.Record())
	assert.NoError(t, ri.Err())
	assert.NoError(t, ri.Close())

	si := NewSliceDuplicateSetIterator([]DuplicateSet{recs[:1], recs[1:]})
	assert.Equal(t, [][]string{{"A"}, {"B"}}, setNames(t, si))
	assert.Nil(t, si.Set())
	assert.NoError(t, si.Close())
}
