package umi

import (
	"fmt"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/errors"
)

// errIncomparable is the cause of every error HammingDistance returns.
var errIncomparable = errors.New("incomparable barcodes")

// HammingDistance returns the number of positions at which barcodes s1
// and s2 differ.  An empty barcode is treated as absent.  If either
// barcode is absent or the two barcodes have different lengths, it
// returns an errors.Invalid error; see IsIncomparable.
func HammingDistance(s1, s2 string) (int, error) {
	if s1 == "" || s2 == "" {
		return -1, errors.E(errors.Invalid,
			"attempt to compare two incomparable UMIs, at least one of the UMIs was missing",
			errIncomparable)
	}
	d, err := matchr.Hamming(s1, s2)
	if err != nil {
		return -1, errors.E(errors.Invalid,
			fmt.Sprintf("barcode %s and %s do not have matching lengths (%v)", s1, s2, err),
			errIncomparable)
	}
	return d, nil
}

// IsIncomparable returns true if err was caused by comparing two
// barcodes that could not be compared.  Other errors.Invalid errors,
// such as bad known UMIs, are not incomparable.
func IsIncomparable(err error) bool {
	if err == nil {
		return false
	}
	found := false
	errors.Visit(err, func(e error) {
		if e == errIncomparable {
			found = true
		}
	})
	return found
}
