package main

/*
  bio-umi-dupsets splits positional duplicate sets by UMI.  For more
  information, see github.com/grailbio/bio-umi/markduplicates/doc.go
*/

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	md "github.com/grailbio/bio-umi/markduplicates"
	"v.io/x/lib/cmdline"
)

func newCmdSplit() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "split",
		Short:    "Split positional duplicate sets by UMI",
		ArgsName: "",
	}
	opts := md.Opts{}
	cmd.Flags.StringVar(&opts.BamFile, "bam", "", "Input coordinate-sorted BAM filename")
	cmd.Flags.StringVar(&opts.OutputPath, "output", "", "Output BAM filename. By default, write to stdout")
	cmd.Flags.StringVar(&opts.MetricsFile, "metrics", "", "Output metrics file, gzipped if it ends in .gz")
	cmd.Flags.StringVar(&opts.UmiTag, "umi-tag", "RX", "Tag that holds the observed UMI of each read")
	cmd.Flags.StringVar(&opts.InferredUmiTag, "inferred-umi-tag", "MI", "Tag that receives the inferred UMI of each read")
	cmd.Flags.IntVar(&opts.EditDistance, "edit-distance", 1, "Largest Hamming distance at which two UMIs are joined")
	cmd.Flags.BoolVar(&opts.AddInferredUmi, "add-inferred-umi", true, "Tag each read with the consensus UMI of its set")
	cmd.Flags.StringVar(&opts.UmiFile, "umi-file", "", "Snap UMIs to the known UMIs in this file before clustering")
	cmd.Flags.IntVar(&opts.Padding, "clip-padding", 143, "padding in bp, this must be larger than the largest 5' alignment distance of any read")
	cmd.Flags.BoolVar(&opts.TagDups, "tag-duplicates", false, "tag each read with the ordinal (DI) and size (DS) of its duplicate set")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("split takes no arguments, but got %v", argv)
		}
		return md.SplitDuplicates(vcontext.Background(), &opts)
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-umi-dupsets",
			Short:    "Tools for UMI-aware duplicate sets",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdSplit(),
			},
		})
}
