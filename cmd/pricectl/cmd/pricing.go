package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"trykkeri-admin/pricing"
)

var (
	importReplace bool
	importDryRun  bool
	exportMode    string
	exportComma   bool
	exportNoMeta  bool
	exportOutput  string
)

var importCmd = &cobra.Command{
	Use:   "import <product-id> <file.csv>",
	Short: "Import a price sheet and publish it",
	Long: `Import reads a price sheet into the product's stored matrix and publishes the result.

Every price in the sheet becomes a locked anchor. With --replace the anchors of the
product are dropped first, otherwise the sheet is merged on top of them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, path := args[0], args[1]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		svc, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		state, err := svc.Pricing.LoadState(cmd.Context(), productID)
		if err != nil {
			return err
		}
		state, result, err := svc.Pricing.Import(cmd.Context(), state, f, importReplace)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Rows:     %d (%d skipped)\n", result.Rows, result.Skipped)
		fmt.Fprintf(out, "Anchors:  %d\n", len(result.Anchors))
		fmt.Fprintf(out, "Quantity: %v\n", result.Quantities)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  ⚠ %s\n", w)
		}

		if importDryRun {
			fmt.Fprintln(out, "\n✓ DRY-RUN COMPLETED - No database changes made")
			return nil
		}
		published, err := svc.Pricing.Publish(cmd.Context(), state)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n✓ Published %d prices for %s\n", published.Rows, published.ProductID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <product-id>",
	Short: "Export the stored matrix as a price sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := pricing.ExportOptions{Mode: pricing.ExportMode(exportMode), Delimiter: ';', NoMeta: exportNoMeta}
		if opts.Mode != pricing.ExportAnchors && opts.Mode != pricing.ExportFinal {
			return fmt.Errorf("unsupported mode: %s (use anchors or final)", exportMode)
		}
		if exportComma {
			opts.Delimiter = ','
		}

		svc, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		state, err := svc.Pricing.LoadState(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := svc.Pricing.Export(cmd.Context(), state, &buf, opts); err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), exportOutput, buf.Bytes())
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <product-id> [state.json]",
	Short: "Publish a saved editing state, or republish the stored matrix",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		var state pricing.State
		if len(args) == 2 {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, &state); err != nil {
				return fmt.Errorf("failed to parse state file: %w", err)
			}
			anchors := state.Anchors
			state = pricing.NewState(args[0], state.PersistedStructure())
			state.Anchors = anchors
		} else {
			state, err = svc.Pricing.LoadState(cmd.Context(), args[0])
			if err != nil {
				return err
			}
		}

		result, err := svc.Pricing.Publish(cmd.Context(), state)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Published %d prices for %s at %s\n", result.Rows, result.ProductID, result.PublishedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

// writeOutput writes data to path, or to w when path is empty or "-"
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(publishCmd)

	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Drop existing anchors before importing")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report only, no database writes")

	exportCmd.Flags().StringVar(&exportMode, "mode", string(pricing.ExportAnchors), "Prices to write: anchors or final")
	exportCmd.Flags().BoolVar(&exportComma, "comma", false, "Use , as separator instead of ;")
	exportCmd.Flags().BoolVar(&exportNoMeta, "no-meta", false, "Leave out the layout meta line")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
}
