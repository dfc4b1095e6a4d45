/*Package markduplicates splits positional duplicate sets by UMI.

  This package is meant to replicate the behavior of picard's
  UmiAwareMarkDuplicatesWithMateCigar duplicate set refinement.

  Concepts:

  A positional duplicate set is a group of reads whose:
    1) reference
    2) unclipped 5' position
    3) read direction (orientation)
  are ALL identical.  Such reads may still come from different source
  molecules.  When the library was prepared with unique molecular
  identifiers (UMIs), each read carries the UMI of its molecule in an
  aux tag (RX by default), and reads of different molecules can be
  told apart by their UMIs.

  UMIs are short and are sequenced with errors, so grouping by exact
  UMI splits reads of one molecule into several sets.  Instead, the
  distinct UMIs of a positional set are clustered: two UMIs whose
  Hamming distance is at most the edit distance are joined, and joins
  are transitive.  Each cluster becomes its own duplicate set, and
  every read in it can be tagged (MI by default) with the cluster's
  consensus UMI, the most frequently observed UMI in the cluster.

  If any read in a positional set lacks a UMI, the set is not split,
  and none of its reads are tagged.

  Implementation:

  PositionGrouper turns a coordinate-sorted stream of records into
  positional duplicate sets.  UmiAwareIterator pulls one positional
  set at a time from an upstream DuplicateSetIterator, splits it using
  umi.Graph, and yields the resulting sets one by one.  Split and
  SplitDuplicates connect a bam input, the two iterators, and a bam
  output.

  Output ordering:

  Sets are yielded in the order of their first read, and reads keep
  their input order within a set.  The output bam is grouped by
  duplicate set, so it is not coordinate sorted.

  Tagging:

  If the caller specifies "tag-duplicates", every read is also tagged
  with DI, the ordinal of its duplicate set in the output, and DS, the
  number of reads in the set.
*/
package markduplicates
