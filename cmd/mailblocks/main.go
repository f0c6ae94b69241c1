package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Notifuse/mailblocks/config"
	"github.com/Notifuse/mailblocks/internal/domain"
	"github.com/Notifuse/mailblocks/internal/service"
	"github.com/Notifuse/mailblocks/pkg/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// cliOptions are the flags shared by every subcommand
type cliOptions struct {
	logLevel     string
	groupGap     int
	contentWidth int
	iconBaseURL  string
	mergeData    string
}

func (o *cliOptions) logger() logger.Logger {
	return logger.NewConsoleLogger(o.logLevel)
}

// newService builds a template service over repo, which may be nil for file rendering
func (o *cliOptions) newService(repo domain.TemplateRepository) (*service.TemplateService, error) {
	mergeData, err := config.ParseMergeData(o.mergeData)
	if err != nil {
		return nil, err
	}
	return service.NewTemplateService(service.TemplateServiceConfig{
		Repository: repo,
		Logger:     o.logger(),
		Render: service.RenderSettings{
			GroupGap:     o.groupGap,
			ContentWidth: o.contentWidth,
			IconBaseURL:  o.iconBaseURL,
			MergeData:    mergeData,
		},
	}), nil
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "mailblocks",
		Short:         "mailblocks - render and export block email templates",
		Long:          `mailblocks renders block documents to preview, source or export HTML and reads templates from a bolt store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.IntVar(&opts.groupGap, "group-gap", 10, "Gap in px between inline group members")
	flags.IntVar(&opts.contentWidth, "content-width", 600, "Max body width in px for exports")
	flags.StringVar(&opts.iconBaseURL, "icon-base-url", "/icons", "Base URL of social icons")
	flags.StringVar(&opts.mergeData, "merge-data", "", "JSON object used as liquid data in previews")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mailblocks %s (built %s)\n", version, buildTime)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newRenderCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
