package markduplicates

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	opts := Opts{BamFile: "in.bam"}
	assert.NoError(t, validate(&opts))
	assert.Equal(t, "RX", opts.UmiTag)
	assert.Equal(t, "MI", opts.InferredUmiTag)

	tests := []struct {
		opts Opts
		ok   bool
	}{
		{Opts{BamFile: "in.bam", UmiTag: "BX", InferredUmiTag: "UB"}, true},
		{Opts{BamFile: "in.bam", InferredUmiTag: "DI"}, true},
		{Opts{}, false},
		{Opts{BamFile: "in.bam", EditDistance: -1}, false},
		{Opts{BamFile: "in.bam", Padding: -1}, false},
		{Opts{BamFile: "in.bam", UmiTag: "RXX"}, false},
		{Opts{BamFile: "in.bam", InferredUmiTag: "M"}, false},
		{Opts{BamFile: "in.bam", UmiTag: "MI"}, false},
		{Opts{BamFile: "in.bam", InferredUmiTag: "DI", TagDups: true}, false},
		{Opts{BamFile: "in.bam", InferredUmiTag: "DS", TagDups: true}, false},
	}
	for _, test := range tests {
		opts := test.opts
		err := validate(&opts)
		if test.ok {
			assert.NoError(t, err, "%+v", test.opts)
		} else {
			assert.True(t, errors.Is(errors.Invalid, err), "%+v: %v", test.opts, err)
		}
	}
}
