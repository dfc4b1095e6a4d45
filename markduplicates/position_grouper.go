package markduplicates

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

type pendingSet struct {
	key   duplicateKey
	reads DuplicateSet
}

// PositionGrouper groups a coordinate-sorted record stream into
// positional duplicate sets.  Two reads are in the same set if their
// references, unclipped 5' positions, and orientations all match.
// Unmapped, secondary and supplementary reads each form a set of their
// own.
//
// Since the input is sorted by alignment start rather than by 5'
// position, a set stays open until the stream has moved more than
// padding bp past its 5' position.  Reads whose 5' position is more
// than padding bp from their alignment start are rejected.  Sets are
// yielded in the order of their first read, and reads keep their
// input order within a set.
type PositionGrouper struct {
	iter    RecordIterator
	padding int

	open  map[duplicateKey]*pendingSet
	queue []*pendingSet // ordered by first read

	// refID and pos of the last record read from iter.
	curRefID int
	curPos   int
	seq      uint64

	set  DuplicateSet
	done bool
	err  error
}

// NewPositionGrouper creates a PositionGrouper that reads from iter.
// Closing the grouper closes iter.
func NewPositionGrouper(iter RecordIterator, padding int) *PositionGrouper {
	return &PositionGrouper{
		iter:     iter,
		padding:  padding,
		open:     map[duplicateKey]*pendingSet{},
		curRefID: -1,
		curPos:   -1,
	}
}

// closed returns true if no future record can join p.
func (g *PositionGrouper) closed(p *pendingSet) bool {
	if p.key.unique != 0 || g.done {
		return true
	}
	return p.key.refID != g.curRefID || p.key.pos < g.curPos-g.padding
}

// Scan implements DuplicateSetIterator.
func (g *PositionGrouper) Scan() bool {
	g.set = nil
	if g.err != nil {
		return false
	}
	for {
		if len(g.queue) > 0 && g.closed(g.queue[0]) {
			p := g.queue[0]
			g.queue = g.queue[1:]
			if p.key.unique == 0 {
				delete(g.open, p.key)
			}
			g.set = p.reads
			return true
		}
		if g.done {
			return false
		}
		if !g.iter.Scan() {
			g.done = true
			if g.err = g.iter.Err(); g.err != nil {
				g.queue = nil
				return false
			}
			continue
		}
		if err := g.add(g.iter.Record()); err != nil {
			g.err = err
			g.queue = nil
			return false
		}
	}
}

func (g *PositionGrouper) add(rec *sam.Record) error {
	if rec.Ref != nil {
		refID := rec.Ref.ID()
		if refID < g.curRefID || (refID == g.curRefID && rec.Pos < g.curPos) {
			return errors.E(errors.Invalid, fmt.Sprintf(
				"input is not coordinate sorted: read %s at %d:%d follows %d:%d",
				rec.Name, refID, rec.Pos, g.curRefID, g.curPos))
		}
		g.curRefID, g.curPos = refID, rec.Pos
	} else {
		// Unmapped reads without a reference sort last.
		g.curRefID, g.curPos = -1, -1
	}

	key := newDuplicateKey(rec, g.seq)
	g.seq++
	if key.unique != 0 {
		g.queue = append(g.queue, &pendingSet{key: key, reads: DuplicateSet{rec}})
		return nil
	}
	if d := abs(rec.Pos - key.pos); d > g.padding {
		return errors.E(errors.Invalid, fmt.Sprintf(
			"5' alignment distance(%d) exceeds padding(%d) on read: %v", d, g.padding, rec.Name))
	}
	if p, ok := g.open[key]; ok {
		p.reads = append(p.reads, rec)
		return nil
	}
	p := &pendingSet{key: key, reads: DuplicateSet{rec}}
	g.open[key] = p
	g.queue = append(g.queue, p)
	log.Debug.Printf("opened positional set %v for read %s", key.String(), rec.Name)
	return nil
}

// Set implements DuplicateSetIterator.
func (g *PositionGrouper) Set() DuplicateSet { return g.set }

// Err implements DuplicateSetIterator.
func (g *PositionGrouper) Err() error { return g.err }

// Close implements DuplicateSetIterator.
func (g *PositionGrouper) Close() error {
	err := g.iter.Close()
	if g.err != nil {
		return g.err
	}
	return err
}
