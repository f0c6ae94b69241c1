package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Notifuse/mailblocks/internal/domain"
	"github.com/Notifuse/mailblocks/pkg/blocks"
)

func newRenderCmd(opts *cliOptions) *cobra.Command {
	var (
		file   string
		mode   string
		device string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a document file (JSON or YAML) to HTML",
		Example: `  mailblocks render --file newsletter.yaml --mode preview --device mobile
  mailblocks render --file newsletter.json --mode export --out newsletter.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocumentFile(file)
			if err != nil {
				return err
			}

			req, err := renderRequest(mode, device, format)
			if err != nil {
				return err
			}

			svc, err := opts.newService(nil)
			if err != nil {
				return err
			}
			result, err := svc.RenderDocument(cmd.Context(), doc, req)
			if err != nil {
				return err
			}
			return writeRendered(cmd, out, result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Document file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&mode, "mode", string(blocks.ModePreview), "Render mode (preview, source, export)")
	cmd.Flags().StringVar(&device, "device", string(blocks.DeviceDesktop), "Preview device (desktop, tablet, mobile)")
	cmd.Flags().StringVar(&format, "format", string(domain.ExportFormatHTML), "Export format (html, mjml)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout when empty")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// renderRequest checks the flag values the way the API checks query params
func renderRequest(mode, device, format string) (domain.RenderRequest, error) {
	req := domain.RenderRequest{
		Mode:   blocks.Mode(mode),
		Device: blocks.Device(device),
		Format: domain.ExportFormat(format),
	}
	if !req.Mode.IsValid() {
		return req, fmt.Errorf("unknown mode %q", mode)
	}
	if !req.Device.IsValid() {
		return req, fmt.Errorf("unknown device %q", device)
	}
	switch req.Format {
	case domain.ExportFormatHTML:
	case domain.ExportFormatMJML:
		if req.Mode != blocks.ModeExport {
			return req, fmt.Errorf("mjml is only available with --mode export")
		}
	default:
		return req, fmt.Errorf("unknown format %q", format)
	}
	return req, nil
}

// loadDocumentFile decodes a document from JSON, or from YAML converted to JSON so the
// polymorphic block decoding stays in one place
func loadDocumentFile(path string) (*domain.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var tree interface{}
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse yaml document: %w", err)
		}
		if data, err = json.Marshal(tree); err != nil {
			return nil, fmt.Errorf("failed to convert yaml document: %w", err)
		}
	case ".json", "":
	default:
		return nil, fmt.Errorf("unsupported document extension %q", filepath.Ext(path))
	}

	doc := blocks.NewDocument("")
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.ID == "" {
		doc.ID = blocks.NewID()
	}
	for _, b := range doc.AllBlocks() {
		// unknown blocks render nothing and are reported after rendering
		if _, ok := b.(*blocks.UnknownBlock); ok {
			continue
		}
		if err := domain.ValidateBlock(b); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// writeRendered writes the markup, or the MJML source for mjml exports
func writeRendered(cmd *cobra.Command, out string, result *domain.RenderResult) error {
	body := result.Markup
	if result.Format == domain.ExportFormatMJML {
		body = result.MJML
	}
	for _, id := range result.EmptyBlocks {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: block %s rendered nothing\n", id)
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
	}
	return nil
}
