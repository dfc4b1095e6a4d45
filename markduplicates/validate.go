package markduplicates

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

func validate(opts *Opts) error {
	if opts.BamFile == "" {
		return errors.E(errors.Invalid, "you must specify a bam file with --bam")
	}
	if opts.EditDistance < 0 {
		return errors.E(errors.Invalid, "edit-distance must be non-negative")
	}
	if opts.Padding < 0 {
		return errors.E(errors.Invalid, "padding must be non-negative")
	}
	if opts.UmiTag == "" {
		opts.UmiTag = "RX"
	}
	if opts.InferredUmiTag == "" {
		opts.InferredUmiTag = "MI"
	}
	for _, tag := range []string{opts.UmiTag, opts.InferredUmiTag} {
		if len(tag) != 2 {
			return errors.E(errors.Invalid, fmt.Sprintf("tag %q must have exactly two characters", tag))
		}
	}
	if opts.UmiTag == opts.InferredUmiTag {
		return errors.E(errors.Invalid, fmt.Sprintf("umi-tag and inferred-umi-tag are both %s", opts.UmiTag))
	}
	if opts.TagDups && (opts.InferredUmiTag == "DI" || opts.InferredUmiTag == "DS") {
		return errors.E(errors.Invalid, fmt.Sprintf("inferred-umi-tag %s conflicts with tag-duplicates", opts.InferredUmiTag))
	}
	return nil
}
