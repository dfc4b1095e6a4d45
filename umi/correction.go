package umi

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

var (
	alphabetMap = map[byte]bool{
		'A': true,
		'C': true,
		'G': true,
		'T': true,
	}

	alphabetWithNMap = map[byte]bool{
		'A': true,
		'C': true,
		'G': true,
		'T': true,
		'N': true,
	}
)

type snapCorrectorEntry struct {
	knownUMI string
	edits    int // -1 if the umi is not snappable.
}

// SnapCorrector implements "snap" correction of UMIs.  A umi U is
// snappable if there is a known umi U1 that is closer to U than all
// other known umis, in terms of Hamming distance.
//
// SnapCorrector memoizes its answers and is not safe for concurrent
// use.
type SnapCorrector struct {
	knownUMIs []string
	k         int

	// correctionTable caches the result of every umi looked up so far.
	correctionTable map[string]snapCorrectorEntry
}

// NewSnapCorrector creates a new snap corrector.  The knownUMIs are a
// \n separated list of UMIs (identical to the file content of a list
// of UMIs, where each line contains a UMI).  Each UMI must consist of
// characters ACGT, and all UMIs must have the same length.
func NewSnapCorrector(knownUMIs []byte) (*SnapCorrector, error) {
	scanner := bufio.NewScanner(bytes.NewReader(knownUMIs))
	known := []string{}
	k := -1
	for scanner.Scan() {
		umi := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if umi == "" {
			continue
		}
		if k < 0 {
			k = len(umi)
		}
		if len(umi) != k {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("umi %s has length %d, other umis have length %d", umi, len(umi), k))
		}
		if err := validateUMI(umi, false); err != nil {
			return nil, err
		}
		known = append(known, umi)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "reading known umis")
	}
	if k < 0 {
		return nil, errors.E(errors.Invalid, "no umis in input")
	}
	log.Debug.Printf("loaded %d known umis of length %d", len(known), k)
	return &SnapCorrector{
		knownUMIs:       known,
		k:               k,
		correctionTable: map[string]snapCorrectorEntry{},
	}, nil
}

// Len returns the length of the known UMIs.
func (c *SnapCorrector) Len() int { return c.k }

// CorrectUMI returns a corrected umi, number of edits to the
// corrected umi, and true if there is exactly one known UMI that is
// closest to the original umi with respect to Hamming distance, and
// that known UMI differs from umi.  If the closest known UMI is
// ambiguous, it returns the original umi, -1, and false.  Umis may
// contain N, and must have the length of the known UMIs.
func (c *SnapCorrector) CorrectUMI(umi string) (correctedUMI string, edits int, corrected bool, err error) {
	umi = strings.ToUpper(umi)
	entry, ok := c.correctionTable[umi]
	if !ok {
		if len(umi) != c.k {
			return umi, -1, false, errors.E(errors.Invalid,
				fmt.Sprintf("umi %s has length %d, known umis have length %d", umi, len(umi), c.k))
		}
		if err := validateUMI(umi, true); err != nil {
			return umi, -1, false, err
		}
		entry = c.snap(umi)
		c.correctionTable[umi] = entry
	}
	if entry.edits < 0 {
		return umi, -1, false, nil
	}
	return entry.knownUMI, entry.edits, entry.knownUMI != umi, nil
}

func (c *SnapCorrector) snap(umi string) snapCorrectorEntry {
	best := snapCorrectorEntry{edits: -1}
	ties := 0
	for _, known := range c.knownUMIs {
		d, err := HammingDistance(umi, known)
		if err != nil {
			// Lengths were validated by the caller.
			panic(fmt.Sprintf("snap %s to %s: %v", umi, known, err))
		}
		switch {
		case best.edits < 0 || d < best.edits:
			best = snapCorrectorEntry{known, d}
			ties = 0
		case d == best.edits:
			ties++
		}
	}
	if ties > 0 {
		log.Debug.Printf("%s is equidistant to %d known umis", umi, ties+1)
		return snapCorrectorEntry{edits: -1}
	}
	log.Debug.Printf("%s snaps to %s with cost %d", umi, best.knownUMI, best.edits)
	return best
}

func validateUMI(umi string, allowN bool) error {
	for i := 0; i < len(umi); i++ {
		c := umi[i]
		if (allowN && !alphabetWithNMap[c]) || (!allowN && !alphabetMap[c]) {
			return errors.E(errors.Invalid, fmt.Sprintf("invalid base %c in umi %v", c, umi))
		}
	}
	return nil
}
