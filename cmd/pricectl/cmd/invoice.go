package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	invoiceOutput string
	invoiceHTML   bool
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice <invoice-id>",
	Short: "Render an invoice as PDF",
	Long: `Invoice renders a stored invoice through headless Chrome.

Set CHROME_PATH when Chrome is not installed in a standard location.
With --html the printable page is written instead of the PDF.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		invoice, err := svc.Invoices.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output := invoiceOutput
		if output == "" {
			ext := "pdf"
			if invoiceHTML {
				ext = "html"
			}
			output = fmt.Sprintf("faktura-%s.%s", invoice.Number, ext)
		}

		if invoiceHTML {
			html, err := svc.Invoices.RenderHTML(cmd.Context(), invoice.ID)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, []byte(html))
		}
		pdf, err := svc.Invoices.GeneratePDF(cmd.Context(), invoice.ID)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), output, pdf)
	},
}

func init() {
	rootCmd.AddCommand(invoiceCmd)

	invoiceCmd.Flags().StringVarP(&invoiceOutput, "output", "o", "", "Output file, - for stdout (default faktura-<number>.pdf)")
	invoiceCmd.Flags().BoolVar(&invoiceHTML, "html", false, "Write the printable HTML instead of the PDF")
}
