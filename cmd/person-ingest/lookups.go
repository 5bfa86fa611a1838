package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mconlon17/vivo-person-ingest/pkg/app"
)

func newLookupsCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookups",
		Short: "Manage the contact, privacy and exception stores",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Copy the lookup files under LOOKUP_DIR into redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, opts.envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			pushed, err := a.PushLookups(ctx)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(pushed))
			for name := range pushed {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, pushed[name])
			}
			return nil
		},
	})
	return cmd
}
