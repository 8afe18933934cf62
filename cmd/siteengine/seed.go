package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/eringen/siteengine"
	"github.com/eringen/siteengine/seed"
)

func newSeedCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load content into empty collections",
		Long: "Seed writes the bundled default content, or the YAML file given with --file,\n" +
			"into every collection that has no documents yet. Populated collections are left alone.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := seed.Defaults
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				data = b
			}
			content, err := seed.Parse(data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := siteengine.OpenDocStore(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := seed.Load(ctx, db, content, c.logger)
			kinds := make([]string, 0, len(res.Written))
			for k := range res.Written {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			out := cmd.OutOrStdout()
			for _, k := range kinds {
				fmt.Fprintf(out, "wrote %d %s\n", res.Written[k], k)
			}
			for _, k := range res.Skipped {
				fmt.Fprintf(out, "skipped %s (already populated)\n", k)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML content file (default: bundled content)")
	return cmd
}
