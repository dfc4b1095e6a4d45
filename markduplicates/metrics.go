package markduplicates

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio-umi/umi"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// UmiMetrics contains metrics from splitting duplicate sets by UMI.
// These mirror the metrics reported by picard's UmiAwareMarkDuplicates.
type UmiMetrics struct {
	// PositionalSets is the number of positional duplicate sets
	// examined.
	PositionalSets int

	// PassThroughSets is the number of positional sets that were not
	// split because at least one of their reads had no UMI.
	PassThroughSets int

	// PassThroughReads is the number of reads in PassThroughSets.
	PassThroughReads int

	// UmiSets is the number of duplicate sets produced by splitting
	// positional sets by UMI.
	UmiSets int

	// UmiReads is the number of reads in UmiSets.
	UmiReads int

	// ObservedUmis is the number of distinct UMIs observed, summed over
	// the positional sets.
	ObservedUmis int

	// InferredUmis is the number of UMI clusters, summed over the
	// positional sets.
	InferredUmis int

	// ObservedBaseErrors is the number of UMI bases that differ from
	// the inferred UMI of their cluster.
	ObservedBaseErrors int

	// UmiBases is the total length of the observed UMIs.
	UmiBases int
}

const umiMetricsHeader = "POSITIONAL_SETS\tPASS_THROUGH_SETS\tPASS_THROUGH_READS\t" +
	"UMI_SETS\tUMI_READS\tOBSERVED_UNIQUE_UMIS\tINFERRED_UNIQUE_UMIS\t" +
	"OBSERVED_BASE_ERRORS\tMEAN_UMI_LENGTH\tUMI_BASE_QUALITY\tESTIMATED_LIBRARY_SIZE\n"

func (m *UmiMetrics) addPassThrough(nReads int) {
	m.PositionalSets++
	m.PassThroughSets++
	m.PassThroughReads += nReads
}

func (m *UmiMetrics) addSplit(nUmis, nClusters int) {
	m.PositionalSets++
	m.ObservedUmis += nUmis
	m.InferredUmis += nClusters
}

// addCluster records one cluster of reads whose consensus is inferred.
// umiOf returns the observed UMI of a read.
func (m *UmiMetrics) addCluster(reads []*sam.Record, inferred string, umiOf func(*sam.Record) string) {
	m.UmiSets++
	m.UmiReads += len(reads)
	for _, r := range reads {
		observed := umiOf(r)
		m.UmiBases += len(observed)
		// Clustering or correction rejects umis whose length differs
		// from the rest of the cluster, so this should not fail.
		d, err := umi.HammingDistance(observed, inferred)
		if err != nil {
			log.Error.Printf("counting base errors of read %s: %v", r.Name, err)
			continue
		}
		m.ObservedBaseErrors += d
	}
}

// MeanUmiLength returns the average length of the observed UMIs.
func (m *UmiMetrics) MeanUmiLength() float64 {
	if m.UmiReads == 0 {
		return 0
	}
	return float64(m.UmiBases) / float64(m.UmiReads)
}

// UmiBaseQuality returns the phred-scaled rate of UMI bases that
// disagree with their inferred UMI.  It returns -1 if there were no
// base errors.
func (m *UmiMetrics) UmiBaseQuality() float64 {
	if m.ObservedBaseErrors == 0 || m.UmiBases == 0 {
		return -1
	}
	return phred(float64(m.ObservedBaseErrors) / float64(m.UmiBases))
}

// EstimatedLibrarySize returns the Lander-Waterman estimate of the
// number of distinct molecules, treating every UMI set as one observed
// molecule.  It returns 0 if there were no duplicates.
func (m *UmiMetrics) EstimatedLibrarySize() uint64 {
	size, err := estimateLibrarySize(uint64(m.UmiReads), uint64(m.UmiSets))
	if err != nil {
		if !errors.Is(errors.Precondition, err) {
			log.Error.Printf("estimating library size: %v", err)
		}
		return 0
	}
	return size
}

func phred(p float64) float64 {
	return -10 * math.Log10(p)
}

// String returns a string representation of the metrics contained in
// m. The string can be used as metrics file output.
func (m *UmiMetrics) String() string {
	return fmt.Sprintf("%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%0.6f\t%0.6f\t%d",
		m.PositionalSets, m.PassThroughSets, m.PassThroughReads,
		m.UmiSets, m.UmiReads, m.ObservedUmis, m.InferredUmis,
		m.ObservedBaseErrors, m.MeanUmiLength(), m.UmiBaseQuality(),
		m.EstimatedLibrarySize())
}

// Add adds the metrics in other to m.
func (m *UmiMetrics) Add(other *UmiMetrics) {
	m.PositionalSets += other.PositionalSets
	m.PassThroughSets += other.PassThroughSets
	m.PassThroughReads += other.PassThroughReads
	m.UmiSets += other.UmiSets
	m.UmiReads += other.UmiReads
	m.ObservedUmis += other.ObservedUmis
	m.InferredUmis += other.InferredUmis
	m.ObservedBaseErrors += other.ObservedBaseErrors
	m.UmiBases += other.UmiBases
}

// writeMetrics writes m to path.  If path ends in .gz, the output is
// gzip compressed.
func writeMetrics(ctx context.Context, path string, m *UmiMetrics) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "Couldn't create metrics file:", path)
	}
	defer func() {
		if err2 := f.Close(ctx); err == nil && err2 != nil {
			err = errors.E(err2, "error closing metrics file:", path)
		}
	}()

	var w io.Writer = f.Writer(ctx)
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(w)
		w = gz
	}
	s := "# bio-umi-dupsets\n" + umiMetricsHeader + m.String() + "\n"
	if _, err = io.WriteString(w, s); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	if gz != nil {
		if err = gz.Close(); err != nil {
			return errors.E(err, "error compressing metrics file:", path)
		}
	}
	return nil
}
