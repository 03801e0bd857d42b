package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkgs-web/internal/app"
)

type locateOptions struct {
	SourceRoot      string
	BuildScriptsDir string
	Provenance      bool
}

func newLocateCommand() *cobra.Command {
	opts := locateOptions{}
	cmd := &cobra.Command{
		Use:   "locate <package>...",
		Short: "Print the build definition of each package",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(cmd.Context(), cmd, opts, args)
		},
	}
	bindSourceFlags(cmd, &opts.SourceRoot, &opts.BuildScriptsDir)
	cmd.Flags().BoolVar(&opts.Provenance, "provenance", false, "Also print last commit time and source URL")
	_ = viper.BindPFlag("provenance", cmd.Flags().Lookup("provenance"))
	return cmd
}

func runLocate(ctx context.Context, cmd *cobra.Command, opts locateOptions, packages []string) error {
	service := newAppService()
	provenance := resolveBool(cmd, opts.Provenance, "provenance", "provenance")
	result, err := service.Locate(ctx, app.LocateRequest{
		SourceRoot:      resolveString(cmd, opts.SourceRoot, "source_root", "source-root"),
		BuildScriptsDir: resolveString(cmd, opts.BuildScriptsDir, "build_scripts_dir", "build-scripts-dir"),
		Packages:        packages,
		Provenance:      provenance,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, pkg := range result.Packages {
		if !provenance {
			fmt.Fprintf(out, "%s %s\n", pkg.Name, pkg.Path)
			continue
		}
		sourceURL := pkg.SourceURL
		if sourceURL == "" {
			sourceURL = "-"
		}
		fmt.Fprintf(out, "%s %s %d %s\n", pkg.Name, pkg.Path, pkg.LastCommit, sourceURL)
	}
	return nil
}
