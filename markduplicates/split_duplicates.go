package markduplicates

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio-umi/umi"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// Opts for splitting duplicate sets by UMI.
type Opts struct {
	// Commandline options.
	BamFile        string
	OutputPath     string
	MetricsFile    string
	UmiTag         string
	InferredUmiTag string
	EditDistance   int
	AddInferredUmi bool
	UmiFile        string
	Padding        int
	TagDups        bool

	// Data derived from commandline options.
	KnownUmis []byte
}

// umiOpts returns the UmiOpts for opts.  opts must have been
// validated.
func (opts *Opts) umiOpts() (UmiOpts, error) {
	uo := UmiOpts{
		EditDistanceToJoin: opts.EditDistance,
		AddInferredUmi:     opts.AddInferredUmi,
		UmiTag:             sam.NewTag(opts.UmiTag),
		InferredUmiTag:     sam.NewTag(opts.InferredUmiTag),
	}
	if opts.KnownUmis != nil {
		var err error
		if uo.Corrector, err = umi.NewSnapCorrector(opts.KnownUmis); err != nil {
			return uo, err
		}
	}
	return uo, nil
}

// flagSet tags each read of the set with the set's ordinal and size.
func flagSet(set DuplicateSet, ordinal int) error {
	for _, r := range set {
		if err := setTag(r, diTag, ordinal); err != nil {
			return err
		}
		if err := setTag(r, dsTag, len(set)); err != nil {
			return err
		}
	}
	return nil
}

// Split reads positional duplicate sets from iter, splits them by
// UMI, and passes the reads of each resulting set, set by set, to
// writeCallback.  It closes iter and returns the metrics.
func Split(iter DuplicateSetIterator, opts *Opts, writeCallback func(*sam.Record) error) (*UmiMetrics, error) {
	uo, err := opts.umiOpts()
	if err != nil {
		if e := iter.Close(); e != nil {
			log.Error.Printf("close: %v", e)
		}
		return nil, err
	}
	metrics := &UmiMetrics{}
	umiIter := NewUmiAwareIterator(iter, uo, metrics)
	ordinal := 0
	for umiIter.Scan() {
		set := umiIter.Set()
		if opts.TagDups {
			if err := flagSet(set, ordinal); err != nil {
				umiIter.Close() // nolint: errcheck
				return nil, err
			}
		}
		for _, r := range set {
			if err := writeCallback(r); err != nil {
				umiIter.Close() // nolint: errcheck
				return nil, errors.E(err, fmt.Sprintf("writing read %s", r.Name))
			}
		}
		ordinal++
	}
	if err := umiIter.Close(); err != nil {
		return nil, err
	}
	return metrics, nil
}

// SplitDuplicates validates opts, splits the positional duplicate sets
// of opts.BamFile by UMI, and writes the result to opts.OutputPath
// (stdout if empty) and the metrics to opts.MetricsFile.  The output
// is grouped by duplicate set rather than sorted by coordinate.
func SplitDuplicates(ctx context.Context, opts *Opts) (err error) {
	if err = validate(opts); err != nil {
		return err
	}

	// Prepare umi inputs.
	if len(opts.UmiFile) > 0 {
		umiReader, err := file.Open(ctx, opts.UmiFile)
		if err != nil {
			log.Debug.Printf("Could not read umi file %s: %s", opts.UmiFile, err)
			return err
		}
		defer umiReader.Close(ctx) // nolint: errcheck
		if opts.KnownUmis, err = ioutil.ReadAll(umiReader.Reader(ctx)); err != nil {
			return errors.E(err, "reading umi file", opts.UmiFile)
		}
		if len(opts.KnownUmis) == 0 {
			return errors.E(errors.Invalid, "UMI list is empty:", opts.UmiFile)
		}
	}

	in, err := file.Open(ctx, opts.BamFile)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	reader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return errors.E(err, "reading bam header of", opts.BamFile)
	}

	var outputStream io.Writer
	if opts.OutputPath == "" {
		outputStream = os.Stdout
	} else {
		out, e := file.Create(ctx, opts.OutputPath)
		if e != nil {
			reader.Close() // nolint: errcheck
			return errors.E(e, "Couldn't create output file", opts.OutputPath)
		}
		defer func() {
			if e := out.Close(ctx); e != nil && err == nil {
				err = errors.E(e, "close", opts.OutputPath)
			}
		}()
		outputStream = out.Writer(ctx)
	}

	header := reader.Header().Clone()
	header.SortOrder = sam.Unsorted
	writer, err := bam.NewWriter(outputStream, header, 1)
	if err != nil {
		reader.Close() // nolint: errcheck
		return errors.E(err, "Couldn't create bam writer for", opts.OutputPath)
	}

	t0 := time.Now()
	grouper := NewPositionGrouper(NewBAMRecordIterator(reader), opts.Padding)
	e := errors.Once{}
	metrics, err := Split(grouper, opts, writer.Write)
	e.Set(err)
	e.Set(writer.Close())
	if err = e.Err(); err != nil {
		return err
	}
	log.Printf("split %d positional sets into %d sets (%d passed through) in %v",
		metrics.PositionalSets, metrics.UmiSets+metrics.PassThroughSets,
		metrics.PassThroughSets, time.Since(t0))

	if opts.MetricsFile != "" {
		if err = writeMetrics(ctx, opts.MetricsFile, metrics); err != nil {
			return err
		}
	}
	return nil
}
