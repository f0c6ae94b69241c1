package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Notifuse/mailblocks/internal/domain"
	"github.com/Notifuse/mailblocks/internal/repository"
	"github.com/Notifuse/mailblocks/pkg/blocks"
)

func newListCmd(opts *cliOptions) *cobra.Command {
	var (
		dbPath string
		search string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates stored in a bolt database",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.OpenBoltTemplateRepository(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			templates, err := repo.ListTemplates(cmd.Context(), domain.ListTemplatesRequest{Search: search, Limit: limit})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSUBJECT\tBLOCKS\tUPDATED")
			for _, t := range templates {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					t.ID, t.Name, t.Subject, len(t.AllBlocks()), t.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "mailblocks.db", "Path to the bolt database")
	cmd.Flags().StringVar(&search, "search", "", "Filter by name or subject")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of templates, 0 for all")
	return cmd
}

func newExportCmd(opts *cliOptions) *cobra.Command {
	var (
		dbPath string
		id     string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored template as a standalone HTML page or MJML",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := renderRequest(string(blocks.ModeExport), string(blocks.DeviceDesktop), format)
			if err != nil {
				return err
			}
			req.ID = id

			repo, err := repository.OpenBoltTemplateRepository(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			svc, err := opts.newService(repo)
			if err != nil {
				return err
			}
			result, err := svc.Render(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeRendered(cmd, out, result)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "mailblocks.db", "Path to the bolt database")
	cmd.Flags().StringVar(&id, "id", "", "Template id")
	cmd.Flags().StringVar(&format, "format", string(domain.ExportFormatHTML), "Export format (html, mjml)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout when empty")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
