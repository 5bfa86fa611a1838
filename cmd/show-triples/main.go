// Command show-triples prints every triple of one VIVO reference.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mconlon17/vivo-person-ingest/pkg/app"
	"github.com/mconlon17/vivo-person-ingest/pkg/ingest"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

// tripleSource is the part of the knowledge base the dump reads
type tripleSource interface {
	Expand(name string) string
	Triples(ctx context.Context, ref string) ([]rdf.Triple, error)
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "show-triples <ref>",
		Short:         "Print the triples of a VIVO reference",
		Args:          cobra.ExactArgs(1),
		Version:       ingest.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, envFile)
			if err != nil {
				return err
			}
			defer a.Close()
			return show(ctx, cmd.OutOrStdout(), a.KB, args[0], time.Now)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the process environment")
	return cmd
}

func show(ctx context.Context, w io.Writer, kb tripleSource, ref string, now func() time.Time) error {
	uri := kb.Expand(ref)
	fmt.Fprintln(w, ref)
	fmt.Fprintln(w, uri)

	triples, err := kb.Triples(ctx, uri)
	if err != nil {
		return ingest.External("read triples", err)
	}
	if triples == nil {
		triples = []rdf.Triple{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(triples); err != nil {
		return err
	}
	fmt.Fprintln(w, now().Format(time.RFC3339), "End")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		code := app.ExitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
