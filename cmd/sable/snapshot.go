package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"sable/internal/types"
	"sable/internal/value"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <pool-file>",
	Short: "Inspect a value pool snapshot",
	Long: `Loads a pool snapshot written by the compiler and prints how many
values it holds, broken down by value kind. Snapshots taken against a
different type table are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := types.NewInterner()
		pool, ok, err := value.LoadSnapshotFile(args[0], in)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no snapshot at %q", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d interned values\n", args[0], pool.Len()-1)
		for _, kc := range snapshotKindCounts(pool) {
			fmt.Fprintf(out, "  %s%d\n", runewidth.FillRight(kc.kind, 14), kc.count)
		}
		return nil
	},
}

type kindCount struct {
	kind  string
	count int
}

// snapshotKindCounts tallies pool entries per key kind, most frequent first.
func snapshotKindCounts(pool *value.Pool) []kindCount {
	counts := make(map[string]int)
	for i := 1; i < pool.Len(); i++ {
		k := pool.IndexToKey(value.Index(i))
		name := strings.TrimPrefix(fmt.Sprintf("%T", k), "value.")
		counts[strings.ToLower(strings.TrimSuffix(name, "Key"))]++
	}
	kinds := make([]kindCount, 0, len(counts))
	for k, n := range counts {
		kinds = append(kinds, kindCount{kind: k, count: n})
	}
	sort.Slice(kinds, func(i, j int) bool {
		if kinds[i].count != kinds[j].count {
			return kinds[i].count > kinds[j].count
		}
		return kinds[i].kind < kinds[j].kind
	})
	return kinds
}
