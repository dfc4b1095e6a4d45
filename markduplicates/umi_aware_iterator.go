package markduplicates

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio-umi/umi"
	"github.com/grailbio/hts/sam"
)

// UmiOpts configures a UmiAwareIterator.
type UmiOpts struct {
	// EditDistanceToJoin is the largest Hamming distance at which two
	// UMIs are joined into the same cluster.
	EditDistanceToJoin int
	// AddInferredUmi causes the consensus UMI of each cluster to be
	// written to InferredUmiTag on every read of the cluster.
	AddInferredUmi bool
	// UmiTag holds the observed UMI of each read.
	UmiTag sam.Tag
	// InferredUmiTag receives the consensus UMI.
	InferredUmiTag sam.Tag
	// Corrector, if not nil, snaps each observed UMI to a known UMI
	// before clustering.
	Corrector *umi.SnapCorrector
}

// UmiAwareIterator splits each positional duplicate set from an
// upstream iterator into smaller duplicate sets whose reads also share
// a UMI cluster.  UMIs within UmiOpts.EditDistanceToJoin of each other
// are joined, transitively, and every read of a cluster may be tagged
// with the cluster's most frequent UMI.
//
// If any read in a positional set lacks the UMI tag, or has an empty
// one, the set is yielded unchanged.  Reads are tagged in place.
type UmiAwareIterator struct {
	upstream DuplicateSetIterator
	opts     UmiOpts
	metrics  *UmiMetrics

	// pending holds the sets split from the last upstream set that have
	// not been yielded yet.
	pending []DuplicateSet
	set     DuplicateSet
	done    bool
	err     error
}

// NewUmiAwareIterator creates a UmiAwareIterator that reads from
// upstream.  If metrics is not nil, it is updated with every set
// processed.  Closing the iterator closes upstream.
func NewUmiAwareIterator(upstream DuplicateSetIterator, opts UmiOpts, metrics *UmiMetrics) *UmiAwareIterator {
	return &UmiAwareIterator{
		upstream: upstream,
		opts:     opts,
		metrics:  metrics,
	}
}

// Scan implements DuplicateSetIterator.
func (it *UmiAwareIterator) Scan() bool {
	it.set = nil
	if it.err != nil {
		return false
	}
	for len(it.pending) == 0 {
		if it.done {
			return false
		}
		if !it.upstream.Scan() {
			it.done = true
			it.err = it.upstream.Err()
			return false
		}
		sets, err := it.process(it.upstream.Set())
		if err != nil {
			it.err = err
			return false
		}
		it.pending = sets
	}
	it.set, it.pending = it.pending[0], it.pending[1:]
	return true
}

// Set implements DuplicateSetIterator.
func (it *UmiAwareIterator) Set() DuplicateSet { return it.set }

// Err implements DuplicateSetIterator.
func (it *UmiAwareIterator) Err() error { return it.err }

// Close implements DuplicateSetIterator.
func (it *UmiAwareIterator) Close() error {
	err := it.upstream.Close()
	if it.err != nil {
		return it.err
	}
	return err
}

func (it *UmiAwareIterator) observedUMI(r *sam.Record) string {
	s, _ := getStringTag(r, it.opts.UmiTag)
	return s
}

// process breaks one positional set into sets that share a UMI
// cluster.
func (it *UmiAwareIterator) process(set DuplicateSet) ([]DuplicateSet, error) {
	if len(set) == 0 {
		return nil, nil
	}

	// If any read is missing the UMI, proceed as if there were no UMIs.
	// An empty UMI counts as missing.
	for _, r := range set {
		if s, ok := getStringTag(r, it.opts.UmiTag); !ok || s == "" {
			log.Debug.Printf("read %s has no %s tag, not splitting its set of %d reads",
				r.Name, it.opts.UmiTag, len(set))
			if it.metrics != nil {
				it.metrics.addPassThrough(len(set))
			}
			return []DuplicateSet{set}, nil
		}
	}

	umiOf := it.observedUMI
	if it.opts.Corrector != nil {
		corrected := make(map[*sam.Record]string, len(set))
		for _, r := range set {
			c, _, _, err := it.opts.Corrector.CorrectUMI(it.observedUMI(r))
			if err != nil {
				return nil, errors.E(err, fmt.Sprintf("correcting umi of read %s", r.Name))
			}
			corrected[r] = c
		}
		umiOf = func(r *sam.Record) string { return corrected[r] }
	}

	umiCounts := map[string]int{}
	for _, r := range set {
		umiCounts[umiOf(r)]++
	}
	graph := umi.NewGraph(umiCounts, it.opts.EditDistanceToJoin)
	if err := graph.ClusterAll(); err != nil {
		return nil, err
	}
	clusters, err := graph.AssignReads(set, umiOf)
	if err != nil {
		return nil, err
	}

	sets := make([]DuplicateSet, 0, len(clusters))
	for _, c := range clusters {
		inferred, err := graph.Consensus(c.ID)
		if err != nil {
			return nil, err
		}
		if it.opts.AddInferredUmi {
			for _, r := range c.Reads {
				if err := setTag(r, it.opts.InferredUmiTag, inferred); err != nil {
					return nil, err
				}
			}
		}
		if it.metrics != nil {
			it.metrics.addCluster(c.Reads, inferred, it.observedUMI)
		}
		sets = append(sets, DuplicateSet(c.Reads))
	}
	if it.metrics != nil {
		it.metrics.addSplit(graph.Len(), len(clusters))
	}
	log.Debug.Printf("split set of %d reads with %d umis into %d sets", len(set), graph.Len(), len(sets))
	return sets, nil
}
