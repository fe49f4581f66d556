package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/postcode-lookup/internal/lookup"
	"github.com/sells-group/postcode-lookup/internal/substation"
)

var substationOutput string

var substationCmd = &cobra.Command{
	Use:   "substation <id>",
	Short: "Show a substation from the directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initSession(cmd.Context(), cfg, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		return runSubstation(env.Service, stdout, args[0], substationOutput)
	},
}

type substationView struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	DNO           string      `json:"dno"`
	LicenseArea   string      `json:"license_area"`
	PostcodeCount int         `json:"postcode_count"`
	Bounds        *[4]float64 `json:"bounds,omitempty"`
}

func runSubstation(svc *lookup.Service, w io.Writer, id, format string) error {
	rec, ok := svc.Directory().Get(id)
	if !ok {
		return fmt.Errorf("substation %q not found", id)
	}
	view, err := newSubstationView(rec)
	if err != nil {
		return err
	}

	return writeOutput(w, format, view, func(w io.Writer) error {
		printer.Fprintf(w, "Substation:    %s [%s]\n", view.Name, view.ID)
		printer.Fprintf(w, "Operator:      %s\n", view.DNO)
		printer.Fprintf(w, "Licence area:  %s\n", view.LicenseArea)
		printer.Fprintf(w, "Postcodes:     %d\n", view.PostcodeCount)
		if view.Bounds != nil {
			b := view.Bounds
			printer.Fprintf(w, "Bounds:        %.5f, %.5f, %.5f, %.5f\n", b[0], b[1], b[2], b[3])
		} else {
			fmt.Fprintln(w, "Bounds:        none")
		}
		return nil
	})
}

func newSubstationView(rec substation.Record) (substationView, error) {
	v := substationView{
		ID:            rec.ID,
		Name:          rec.Name,
		DNO:           rec.DNO,
		LicenseArea:   rec.LicenseArea,
		PostcodeCount: rec.PostcodeCount,
	}
	box, ok, err := rec.Bounds()
	if err != nil {
		return v, err
	}
	if ok {
		v.Bounds = &box
	}
	return v, nil
}

func init() {
	substationCmd.Flags().StringVarP(&substationOutput, "output", "o", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(substationCmd)
}
