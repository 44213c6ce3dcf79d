package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/procure-client/internal/utils"
	"github.com/jrsteele09/procure-client/marketplace"
)

var rfqFilters marketplace.RFQFilters

var rfqsCmd = &cobra.Command{
	Use:   "rfqs",
	Short: "List open requests for quotation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rfqs, err := app.Client.ListRFQs(cmd.Context(), rfqFilters)
		if err != nil {
			return err
		}
		printRFQs(cmd.OutOrStdout(), rfqs...)
		return nil
	},
}

var rfqGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one RFQ",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rfq, err := app.Client.GetRFQ(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRFQs(cmd.OutOrStdout(), rfq)
		return nil
	},
}

var rfqResponsesCmd = &cobra.Command{
	Use:   "responses <id>",
	Short: "List the quotes received for an RFQ",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		responses, err := app.Client.ListRFQResponses(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSUPPLIER\tSTATUS\tPRICE\tLEAD TIME (DAYS)")
		for _, r := range responses {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.SupplierCompanyName, r.Status, r.PriceQuote, utils.Value(r.LeadTimeDays))
		}
		return w.Flush()
	},
}

var rfqCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Stop accepting quotes for an RFQ",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rfq, err := app.Client.UpdateRFQ(cmd.Context(), args[0], marketplace.RFQUpdate{
			Status: utils.Ptr(marketplace.RFQStatusClosed),
		})
		if err != nil {
			return err
		}
		printRFQs(cmd.OutOrStdout(), rfq)
		return nil
	},
}

var rfqDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an RFQ",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Client.DeleteRFQ(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(rfqsCmd)
	rfqsCmd.AddCommand(rfqGetCmd, rfqResponsesCmd, rfqCloseCmd, rfqDeleteCmd)

	f := rfqsCmd.Flags()
	f.StringVar((*string)(&rfqFilters.Status), "status", "", "active, closed, expired or cancelled")
	f.StringVar(&rfqFilters.MaterialCategory, "category", "", "material category")
	f.StringVar(&rfqFilters.Search, "search", "", "search title and specifications")
	f.IntVar(&rfqFilters.Skip, "skip", 0, "results to skip")
	f.IntVar(&rfqFilters.Limit, "limit", 0, "maximum results (1-100)")
}

func printRFQs(out io.Writer, rfqs ...marketplace.RFQ) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tSTATUS\tRESPONSES")
	for _, r := range rfqs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Title, r.MaterialCategory, r.Status, r.ResponseCount)
	}
	_ = w.Flush()
}
