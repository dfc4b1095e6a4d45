package markduplicates

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

var (
	diTag = sam.Tag{'D', 'I'}
	dsTag = sam.Tag{'D', 'S'}
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func isReversedRead(r *sam.Record) bool {
	return r.Flags&sam.Reverse != 0
}

// unclippedStart returns the 0-based alignment start of r, moved left
// by the leading soft and hard clips.
func unclippedStart(r *sam.Record) int {
	pos := r.Pos
	for _, op := range r.Cigar {
		t := op.Type()
		if t != sam.CigarSoftClipped && t != sam.CigarHardClipped {
			break
		}
		pos -= op.Len()
	}
	return pos
}

// unclippedEnd returns the 0-based position of the last aligned base
// of r, moved right by the trailing soft and hard clips.
func unclippedEnd(r *sam.Record) int {
	pos := r.End() - 1
	for i := len(r.Cigar) - 1; i >= 0; i-- {
		t := r.Cigar[i].Type()
		if t != sam.CigarSoftClipped && t != sam.CigarHardClipped {
			break
		}
		pos += r.Cigar[i].Len()
	}
	return pos
}

// unclippedFivePrimePosition returns the unclipped position of the 5'
// end of r: the unclipped start of a forward read, or the unclipped
// end of a reverse read.
func unclippedFivePrimePosition(r *sam.Record) int {
	if isReversedRead(r) {
		return unclippedEnd(r)
	}
	return unclippedStart(r)
}

// getStringTag returns the value of the string aux field tag in r.
// The second return value is false if the tag is absent or does not
// hold a string.
func getStringTag(r *sam.Record, tag sam.Tag) (string, bool) {
	aux := r.AuxFields.Get(tag)
	if aux == nil {
		return "", false
	}
	s, ok := aux.Value().(string)
	return s, ok
}

// setTag sets aux field tag in r to value, replacing any existing
// field with the same tag.
func setTag(r *sam.Record, tag sam.Tag, value interface{}) error {
	aux, err := sam.NewAux(tag, value)
	if err != nil {
		return errors.E(err, fmt.Sprintf("error creating %s:%v tag", tag, value))
	}
	for i, a := range r.AuxFields {
		if a.Tag() == tag {
			r.AuxFields[i] = aux
			return nil
		}
	}
	r.AuxFields = append(r.AuxFields, aux)
	return nil
}
