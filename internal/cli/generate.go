package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkgs-web/internal/app"
)

type generateOptions struct {
	Pipeline    pipelineOptions
	Output      string
	TemplateDir string
	Latest      int
}

func newGenerateCommand() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fetch the catalog, enrich it from the source tree and render the site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), cmd, opts)
		},
	}
	bindPipelineFlags(cmd, &opts.Pipeline)
	cmd.Flags().StringVar(&opts.Output, "output", "", "Output directory; the site is written to <output>/www")
	cmd.Flags().StringVar(&opts.TemplateDir, "template-dir", "", "Directory with package-template.html, front-page.html and css/ (default: built-in)")
	cmd.Flags().IntVar(&opts.Latest, "latest", app.DefaultLatest, "Number of recently updated packages on the home page")

	_ = viper.BindPFlag("generate_output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("template_dir", cmd.Flags().Lookup("template-dir"))
	_ = viper.BindPFlag("latest", cmd.Flags().Lookup("latest"))
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, opts generateOptions) error {
	service := newAppService()
	result, err := service.Generate(ctx, app.GenerateRequest{
		Pipeline:    resolvePipeline(cmd, opts.Pipeline),
		OutputDir:   resolveString(cmd, opts.Output, "generate_output", "output"),
		TemplateDir: resolveString(cmd, opts.TemplateDir, "template_dir", "template-dir"),
		Latest:      resolveInt(cmd, opts.Latest, "latest", "latest"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "generated %d package pages in %s\n", result.Pages, result.OutputDir)
	for _, failure := range result.Failures {
		fmt.Fprintf(out, "skipped %s (%s): %s\n", failure.Package, failure.Kind, failure.Message)
	}
	return nil
}
