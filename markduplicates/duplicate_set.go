package markduplicates

import (
	"io"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// DuplicateSet is an ordered set of reads that are believed to be
// duplicates of each other.
type DuplicateSet []*sam.Record

// DuplicateSetIterator yields duplicate sets, in order.  Thread
// compatible.
type DuplicateSetIterator interface {
	// Scan returns whether there are any sets remaining in the
	// iterator, and if so, advances the iterator to the next set.  Once
	// the iterator is exhausted, or an error occurs, Scan returns false,
	// and keeps returning false.  The error, if any, can be retrieved by
	// calling Err().
	Scan() bool

	// Set returns the current set.  It returns nil unless the last call
	// to Scan returned true.
	Set() DuplicateSet

	// Err returns the error encountered during iteration, or nil if no
	// error occurred.  Exhaustion is not an error.
	Err() error

	// Close releases the iterator and anything it reads from.  It must
	// be called exactly once, and returns the value of Err() if there
	// is no other error.
	Close() error
}

// RecordIterator iterates over sam.Records in coordinate order.  Its
// Scan, Err and Close behave like those of DuplicateSetIterator.
type RecordIterator interface {
	Scan() bool
	Record() *sam.Record
	Err() error
	Close() error
}

type sliceDuplicateSetIterator struct {
	sets []DuplicateSet
	set  DuplicateSet
}

// NewSliceDuplicateSetIterator returns an iterator that yields sets.
func NewSliceDuplicateSetIterator(sets []DuplicateSet) DuplicateSetIterator {
	return &sliceDuplicateSetIterator{sets: sets}
}

func (it *sliceDuplicateSetIterator) Scan() bool {
	if len(it.sets) == 0 {
		it.set = nil
		return false
	}
	it.set, it.sets = it.sets[0], it.sets[1:]
	return true
}

func (it *sliceDuplicateSetIterator) Set() DuplicateSet { return it.set }
func (it *sliceDuplicateSetIterator) Err() error        { return nil }
func (it *sliceDuplicateSetIterator) Close() error      { return nil }

type sliceRecordIterator struct {
	recs []*sam.Record
	rec  *sam.Record
}

// NewSliceRecordIterator returns an iterator that yields recs.  recs
// should be in coordinate order.
func NewSliceRecordIterator(recs []*sam.Record) RecordIterator {
	return &sliceRecordIterator{recs: recs}
}

func (it *sliceRecordIterator) Scan() bool {
	if len(it.recs) == 0 {
		it.rec = nil
		return false
	}
	it.rec, it.recs = it.recs[0], it.recs[1:]
	return true
}

func (it *sliceRecordIterator) Record() *sam.Record { return it.rec }
func (it *sliceRecordIterator) Err() error          { return nil }
func (it *sliceRecordIterator) Close() error        { return nil }

type bamRecordIterator struct {
	reader *bam.Reader
	rec    *sam.Record
	err    error
}

// NewBAMRecordIterator returns an iterator over the records of a
// coordinate-sorted bam.  Closing the iterator closes reader.
func NewBAMRecordIterator(reader *bam.Reader) RecordIterator {
	return &bamRecordIterator{reader: reader}
}

func (it *bamRecordIterator) Scan() bool {
	if it.err != nil {
		return false
	}
	it.rec, it.err = it.reader.Read()
	if it.err != nil {
		it.rec = nil
		return false
	}
	return true
}

func (it *bamRecordIterator) Record() *sam.Record { return it.rec }

func (it *bamRecordIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *bamRecordIterator) Close() error {
	err := it.reader.Close()
	if e := it.Err(); e != nil {
		return e
	}
	return err
}
