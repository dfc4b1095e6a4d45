package markduplicates

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecord is an input record together with the tags it is expected
// to carry in the output.
type TestRecord struct {
	R              *sam.Record
	ExpectedAuxs   []sam.Aux
	UnexpectedTags []sam.Tag
}

// TestCase is one run of SplitDuplicates.  ExpectedOrder lists the
// names of the output records in order.
type TestCase struct {
	TRecords      []TestRecord
	ExpectedOrder []string
	Opts          Opts
}

func NewRecord(name string, ref *sam.Reference, pos int, flags sam.Flags, cigar sam.Cigar) *sam.Record {
	r := sam.GetFromFreePool()
	r.Name = name
	r.Ref = ref
	r.Pos = pos
	r.MatePos = -1
	r.Flags = flags
	r.Cigar = cigar
	r.AuxFields = nil
	return r
}

// NewRecordUmi returns a record whose RX tag is umi.  The tag is not
// set if umi is empty.
func NewRecordUmi(name string, ref *sam.Reference, pos int, flags sam.Flags, cigar sam.Cigar, umi string) *sam.Record {
	r := NewRecord(name, ref, pos, flags, cigar)
	if umi != "" {
		r.AuxFields = append(r.AuxFields, NewAux("RX", umi))
	}
	return r
}

func NewAux(name string, val interface{}) sam.Aux {
	aux, err := sam.NewAux(sam.NewTag(name), val)
	if err != nil {
		panic(fmt.Sprintf("error creating %s %v tag: %v", name, val, err))
	}
	return aux
}

// WriteRecords writes header and records to a new bam file at path.
func WriteRecords(t *testing.T, path string, header *sam.Header, records []*sam.Record) {
	out, err := os.Create(path)
	require.NoError(t, err)
	w, err := bam.NewWriter(out, header, 1)
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
}

// ReadRecords reads the records from path and returns them as a slice, in order.
func ReadRecords(t *testing.T, path string) []*sam.Record {
	records := make([]*sam.Record, 0)
	in, err := os.Open(path)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, in.Close())
	}()
	reader, err := bam.NewReader(in, 1)
	require.NoError(t, err)
	for {
		r, err := reader.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		records = append(records, r)
	}
	assert.NoError(t, reader.Close())
	return records
}

func RunTestCases(t *testing.T, header *sam.Header, cases []TestCase) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	for testIdx, test := range cases {
		t.Logf("---- starting TestCase[%d] ----", testIdx)
		inputs := make([]*sam.Record, 0, len(test.TRecords))
		expected := map[string]TestRecord{}
		for _, tr := range test.TRecords {
			inputs = append(inputs, tr.R)
			expected[tr.R.Name] = tr
		}
		inputPath := filepath.Join(tempDir, fmt.Sprintf("in%d.bam", testIdx))
		outputPath := filepath.Join(tempDir, fmt.Sprintf("out%d.bam", testIdx))
		WriteRecords(t, inputPath, header, inputs)

		opts := test.Opts
		opts.BamFile = inputPath
		opts.OutputPath = outputPath
		assert.NoError(t, SplitDuplicates(vcontext.Background(), &opts))

		actualRecords := ReadRecords(t, outputPath)
		assert.Equal(t, len(test.TRecords), len(actualRecords))
		names := make([]string, 0, len(actualRecords))
		for i, r := range actualRecords {
			t.Logf("output[%v]: %v", i, r)
			names = append(names, r.Name)
			tr, ok := expected[r.Name]
			if !assert.True(t, ok, "unexpected output record %s", r.Name) {
				continue
			}
			// Verify that exactly one of each expected tag exists, and has the right value.
			for _, expectedAux := range tr.ExpectedAuxs {
				found := 0
				for _, aux := range r.AuxFields {
					if aux.Tag() == expectedAux.Tag() {
						assert.Equal(t, expectedAux, aux, "record %s", r.Name)
						found++
					}
				}
				assert.Equal(t, 1, found, "Incorrect number of %s tags on %s, expected 1, got %d",
					expectedAux.Tag(), r.Name, found)
			}
			// Verify that these tags do not exist.
			for _, negTag := range tr.UnexpectedTags {
				actual := r.AuxFields.Get(negTag)
				assert.Nil(t, actual, "Expected tag %s to be absent on %s, but it exists: %v", negTag, r.Name, actual)
			}
		}
		if test.ExpectedOrder != nil {
			assert.Equal(t, test.ExpectedOrder, names)
		}
	}
}
