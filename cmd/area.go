package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/postcode-lookup/internal/lookup"
	"github.com/sells-group/postcode-lookup/internal/postcode"
)

var areaOutput string

var areaCmd = &cobra.Command{
	Use:   "area <postcode> <substation-id>",
	Short: "Reconstruct the postcodes served by a substation",
	Long: "Loads every chunk named {prefix}1 to {prefix}99 plus {prefix} for the postcode's " +
		"area prefix, then lists cached postcodes mapped to the substation.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initSession(cmd.Context(), cfg, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		return runArea(cmd.Context(), env.Service, stdout, args[0], args[1], areaOutput)
	},
}

func runArea(ctx context.Context, svc *lookup.Service, w io.Writer, pc, substationID, format string) error {
	report, err := svc.ReconstructAreaReport(ctx, postcode.Normalize(pc), substationID)
	if err != nil {
		return err
	}

	return writeOutput(w, format, report, func(w io.Writer) error {
		printer.Fprintf(w, "Prefix %q: %d of %d chunks loaded, %d unavailable, %d scanned\n",
			report.Prefix, report.Loaded, report.Attempted, report.Unavailable, report.Scanned)
		printer.Fprintf(w, "%d postcodes served by %s\n", len(report.Postcodes), substationID)
		for _, p := range report.Postcodes {
			fmt.Fprintf(w, "  %s\n", p)
		}
		return nil
	})
}

func init() {
	areaCmd.Flags().StringVarP(&areaOutput, "output", "o", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(areaCmd)
}
