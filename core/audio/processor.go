package audio

import "context"

// Processor turns a ConversionSpec into an on-disk artifact.
type Processor interface {
	Run(ctx context.Context, spec *ConversionSpec) (*Artifact, error)
}

var _ Processor = (*FFmpegProcessor)(nil)
