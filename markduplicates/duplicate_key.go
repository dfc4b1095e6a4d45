package markduplicates

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

type Orientation uint8

const (
	f Orientation = iota // Forward
	r                    // Reverse
)

// duplicateKey identifies the positional duplicate set of a single
// read: its reference, unclipped 5' position, and orientation.  Reads
// that cannot be keyed (unmapped, secondary or supplementary) get a
// key with a distinct unique field, so each of them forms its own set.
type duplicateKey struct {
	refID       int
	pos         int
	Orientation Orientation
	unique      uint64
}

func (k *duplicateKey) String() string {
	return fmt.Sprintf("(%d,%d,0x%x,%d)", k.refID, k.pos, k.Orientation, k.unique)
}

func orientationByteSingle(reversed bool) Orientation {
	if reversed {
		return r
	}
	return f
}

// isKeyable returns true if rec takes part in positional duplicate
// grouping.
func isKeyable(rec *sam.Record) bool {
	return rec.Ref != nil &&
		rec.Flags&(sam.Unmapped|sam.Secondary|sam.Supplementary) == 0
}

// newDuplicateKey returns the key of rec.  seq is used only for reads
// that are not keyable and must be distinct for each of them.
func newDuplicateKey(rec *sam.Record, seq uint64) duplicateKey {
	if !isKeyable(rec) {
		return duplicateKey{refID: rec.Ref.ID(), pos: rec.Pos, unique: seq + 1}
	}
	return duplicateKey{
		refID:       rec.Ref.ID(),
		pos:         unclippedFivePrimePosition(rec),
		Orientation: orientationByteSingle(isReversedRead(rec)),
	}
}
