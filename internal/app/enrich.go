package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Enrich runs the pipeline and writes the enriched records to req.Output.
func (s Service) Enrich(ctx context.Context, req EnrichRequest) (EnrichResult, error) {
	output := strings.TrimSpace(req.Output)
	if output == "" {
		return EnrichResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	result, err := s.Pipeline(ctx, req.Pipeline)
	if err != nil {
		return EnrichResult{}, err
	}
	if err := s.RecordWriter.Write(output, result); err != nil {
		return EnrichResult{}, err
	}
	return EnrichResult{
		OutputPath: output,
		Records:    len(result.Records),
		Failures:   result.Failures,
	}, nil
}
