package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/lookup"
	"github.com/sells-group/postcode-lookup/internal/postcode"
)

var suggestPreload []string

var suggestCmd = &cobra.Command{
	Use:   "suggest <partial>",
	Short: "Suggest postcodes from loaded chunks",
	Long: "Suggest postcodes that start with the given text. Only chunks already loaded " +
		"in this session are searched; use --preload to load outward codes first.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initSession(cmd.Context(), cfg, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		return runSuggest(cmd.Context(), env.Service, stdout, args[0], suggestPreload)
	},
}

func runSuggest(ctx context.Context, svc *lookup.Service, w io.Writer, partial string, preload []string) error {
	for _, out := range preload {
		out = strings.ToUpper(strings.TrimSpace(out))
		if out == "" {
			continue
		}
		if _, err := svc.Store().Get(ctx, out); err != nil {
			zap.L().Warn("preload failed", zap.String("chunk", out), zap.Error(err))
		}
	}

	for _, pc := range svc.Suggest(partial) {
		fmt.Fprintln(w, postcode.Format(pc))
	}
	return nil
}

func init() {
	suggestCmd.Flags().StringSliceVar(&suggestPreload, "preload", nil, "outward codes to load before suggesting, e.g. N15,N16")
	rootCmd.AddCommand(suggestCmd)
}
