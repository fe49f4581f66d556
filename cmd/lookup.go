package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/postcode-lookup/internal/lookup"
	"github.com/sells-group/postcode-lookup/internal/postcode"
)

var (
	lookupPage   int
	lookupOutput string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <postcode>",
	Short: "Show the substation serving a postcode and its area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initSession(cmd.Context(), cfg, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		return runLookup(cmd.Context(), env.Service, stdout, args[0], lookupPage, lookupOutput)
	},
}

func runLookup(ctx context.Context, svc *lookup.Service, w io.Writer, raw string, page int, format string) error {
	res, err := svc.Search(ctx, raw, page)
	if err != nil {
		return describeLookupError(raw, err)
	}
	return writeOutput(w, format, res, func(w io.Writer) error {
		return printSearch(w, res)
	})
}

// describeLookupError turns lookup sentinels into messages for the terminal.
func describeLookupError(raw string, err error) error {
	switch {
	case errors.Is(err, lookup.ErrInvalidInput):
		return fmt.Errorf("please enter a postcode")
	case errors.Is(err, lookup.ErrNotFound):
		return fmt.Errorf("postcode %q not found", postcode.Normalize(raw))
	case errors.Is(err, lookup.ErrSubstationMissing):
		return fmt.Errorf("substation details not found for %q: %w", postcode.Normalize(raw), err)
	default:
		return err
	}
}

func printSearch(w io.Writer, res *lookup.SearchResult) error {
	s := res.Substation
	printer.Fprintf(w, "Postcode:      %s (%.5f, %.5f)\n", res.Postcode, res.Lat, res.Lng)
	printer.Fprintf(w, "Substation:    %s [%s]\n", s.Name, s.ID)
	printer.Fprintf(w, "Operator:      %s\n", s.DNO)
	printer.Fprintf(w, "Licence area:  %s\n", s.LicenseArea)
	printer.Fprintf(w, "Postcodes:     %d\n", s.PostcodeCount)
	if s.Bounds != nil {
		printer.Fprintf(w, "Bounds:        %.5f, %.5f, %.5f, %.5f\n", s.Bounds[0], s.Bounds[1], s.Bounds[2], s.Bounds[3])
	}

	a := res.Area
	printer.Fprintf(w, "\nArea postcodes: %d found (page %d of %d)\n", a.Total, a.Page, a.TotalPages)
	for _, pc := range a.Items {
		fmt.Fprintf(w, "  %s\n", postcode.Format(pc))
	}
	if a.HasNext {
		fmt.Fprintf(w, "\nMore: --page %d\n", a.Page+1)
	}
	return nil
}

func init() {
	lookupCmd.Flags().IntVar(&lookupPage, "page", 1, "page of area postcodes to show")
	lookupCmd.Flags().StringVarP(&lookupOutput, "output", "o", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(lookupCmd)
}
