package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-dashboard/internal/models"
)

// queryCmd evaluates a JSONPath expression against the snapshot.
type queryCmd struct{}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression against the snapshot" }
func (*queryCmd) Usage() string {
	return `dashboard-cli [-snapshot <file>] query <jsonpath>

  Field names follow the snapshot file format.

Usage Examples:
$ dashboard-cli query '$.total_value'
$ dashboard-cli query '$.holdings[?(@.gain_loss < 0)].ticker'
`
}

func (*queryCmd) SetFlags(*flag.FlagSet) {}

func (*queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: query takes exactly one JSONPath expression")
		return subcommands.ExitUsageError
	}

	s, err := loadSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := writeQuery(os.Stdout, s, f.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// querySnapshot evaluates path over the snapshot's JSON form.
func querySnapshot(s *models.Snapshot, path string) (any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, err
	}
	val, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	return val, nil
}

func writeQuery(w io.Writer, s *models.Snapshot, path string) error {
	val, err := querySnapshot(s, path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(val)
}
