package umi

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// Graph clusters the distinct UMIs observed in one positional
// duplicate set.  Two UMIs are joined when their Hamming distance is
// at most the edit distance given to NewGraph, and joins are
// transitive.
//
// Each UMI is identified by a dense id in [0, Len()).  Ids are
// assigned in lexicographic UMI order, so all iteration over a Graph is
// deterministic.  A Graph is built for a single duplicate set and is
// not safe for concurrent use.
type Graph struct {
	umis   []string // umis[id] is the UMI with the given id.
	counts []int    // counts[id] is the number of reads carrying umis[id].

	// parent[id] is the parent of id in the union-find forest.  After
	// ClusterAll, parent[id] is the representative of id's cluster.
	parent []int

	editDistanceToJoin int
	nClusters          int
}

// NewGraph creates a Graph from umiCounts, which maps each distinct
// UMI to the number of reads it was observed on.  Initially every UMI
// is its own cluster.
func NewGraph(umiCounts map[string]int, editDistanceToJoin int) *Graph {
	umis := make([]string, 0, len(umiCounts))
	for umi := range umiCounts {
		umis = append(umis, umi)
	}
	sort.Strings(umis)

	g := &Graph{
		umis:               umis,
		counts:             make([]int, len(umis)),
		parent:             make([]int, len(umis)),
		editDistanceToJoin: editDistanceToJoin,
		nClusters:          len(umis),
	}
	for i, umi := range umis {
		g.counts[i] = umiCounts[umi]
		g.parent[i] = i
	}
	return g
}

// Len returns the number of distinct UMIs in g.
func (g *Graph) Len() int { return len(g.umis) }

// NumClusters returns the current number of clusters.
func (g *Graph) NumClusters() int { return g.nClusters }

// UMI returns the UMI with the given id.
func (g *Graph) UMI(id int) string { return g.umis[id] }

// Find returns the representative id of the cluster containing id,
// compressing the path from id to the representative.
func (g *Graph) Find(id int) int {
	root := id
	for root != g.parent[root] {
		root = g.parent[root]
	}
	for id != root {
		next := g.parent[id]
		g.parent[id] = root
		id = next
	}
	return root
}

// Union joins the clusters containing a and b.  It does nothing if a
// and b are already in the same cluster.
func (g *Graph) Union(a, b int) {
	rootA := g.Find(a)
	rootB := g.Find(b)
	if rootA == rootB {
		return
	}
	g.parent[rootA] = rootB
	g.nClusters--
}

// ClusterAll compares every pair of UMIs and joins the pairs within
// the edit distance.  Afterwards, every entry of the forest points
// directly at its representative.  ClusterAll fails if any two UMIs
// are incomparable; the Graph must not be used after a failure.
func (g *Graph) ClusterAll() error {
	n := len(g.umis)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d, err := HammingDistance(g.umis[i], g.umis[j])
			if err != nil {
				return err
			}
			if d <= g.editDistanceToJoin {
				g.Union(i, j)
			}
		}
	}
	for i := 0; i < n; i++ {
		g.parent[i] = g.Find(i)
	}
	log.Debug.Printf("joined %d umis into %d clusters with edit distance %d",
		n, g.nClusters, g.editDistanceToJoin)
	return nil
}

// ClusterIDs returns a map from each UMI to the representative id of
// its cluster.  The map is rebuilt on every call.
func (g *Graph) ClusterIDs() map[string]int {
	m := make(map[string]int, len(g.umis))
	for i, umi := range g.umis {
		m[umi] = g.Find(i)
	}
	return m
}

// Members returns a map from each cluster representative id to the
// UMIs in that cluster, in ascending id order.  The map is rebuilt on
// every call.
func (g *Graph) Members() map[int][]string {
	m := map[int][]string{}
	for i, umi := range g.umis {
		root := g.Find(i)
		m[root] = append(m[root], umi)
	}
	return m
}

// Consensus returns the most frequently observed UMI in the cluster
// represented by id.  Ties go to the lexicographically smallest UMI.
// An id that represents no UMIs is an errors.Integrity error.
func (g *Graph) Consensus(id int) (string, error) {
	best := -1
	for i := range g.umis {
		if g.Find(i) != id {
			continue
		}
		if best < 0 || g.counts[i] > g.counts[best] {
			best = i
		}
	}
	if best < 0 {
		return "", errors.E(errors.Integrity, fmt.Sprintf("umi cluster %d has no members", id))
	}
	return g.umis[best], nil
}

// ReadCluster is a set of reads whose UMIs belong to the same cluster.
type ReadCluster struct {
	// ID is the representative id of the cluster.
	ID int
	// Reads are in input order.
	Reads []*sam.Record
}

// AssignReads buckets reads by the cluster of the UMI that umiOf
// returns for each read.  Clusters are returned in the order of their
// first read.  A read whose UMI is not in g is an errors.Integrity
// error, since g should have been built from the same reads.
func (g *Graph) AssignReads(reads []*sam.Record, umiOf func(*sam.Record) string) ([]ReadCluster, error) {
	clusterIDs := g.ClusterIDs()
	index := map[int]int{} // cluster id -> index into clusters
	var clusters []ReadCluster
	for _, r := range reads {
		umi := umiOf(r)
		id, ok := clusterIDs[umi]
		if !ok {
			return nil, errors.E(errors.Integrity,
				fmt.Sprintf("umi %q of read %s has no cluster", umi, r.Name))
		}
		idx, ok := index[id]
		if !ok {
			idx = len(clusters)
			index[id] = idx
			clusters = append(clusters, ReadCluster{ID: id})
		}
		clusters[idx].Reads = append(clusters[idx].Reads, r)
	}
	return clusters, nil
}

// IsMissingClusterMapping returns true if err reports a UMI or cluster
// that the Graph could not resolve.
func IsMissingClusterMapping(err error) bool {
	return errors.Is(errors.Integrity, err)
}
