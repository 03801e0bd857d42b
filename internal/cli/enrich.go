package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkgs-web/internal/app"
)

type enrichOptions struct {
	Pipeline pipelineOptions
	Output   string
}

func newEnrichCommand() *cobra.Command {
	opts := enrichOptions{}
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fetch and enrich the catalog, writing the records as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnrich(cmd.Context(), cmd, opts)
		},
	}
	bindPipelineFlags(cmd, &opts.Pipeline)
	cmd.Flags().StringVar(&opts.Output, "output", "enriched.yaml", "Output path for the enriched records")
	_ = viper.BindPFlag("enrich_output", cmd.Flags().Lookup("output"))
	return cmd
}

func runEnrich(ctx context.Context, cmd *cobra.Command, opts enrichOptions) error {
	service := newAppService()
	result, err := service.Enrich(ctx, app.EnrichRequest{
		Pipeline: resolvePipeline(cmd, opts.Pipeline),
		Output:   resolveString(cmd, opts.Output, "enrich_output", "output"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %d enriched records: %s\n", result.Records, result.OutputPath)
	for _, failure := range result.Failures {
		fmt.Fprintf(out, "skipped %s (%s): %s\n", failure.Package, failure.Kind, failure.Message)
	}
	return nil
}
