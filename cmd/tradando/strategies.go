package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/tradando/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var strategiesJSON bool

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List registered strategies with their configured parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App, log *zap.Logger) error {
			infos, err := a.Strategies()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if strategiesJSON {
				return writeJSON(out, infos)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLOOKBACK\tDESCRIPTION\tPARAMS")
			for _, s := range infos {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Name, s.Lookback, s.Description, formatParams(s.Params))
			}
			return tw.Flush()
		})
	},
}

func formatParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	return strings.Join(parts, " ")
}

func init() {
	strategiesCmd.Flags().BoolVar(&strategiesJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(strategiesCmd)
}
