package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"
)

// SummaryCmd prints how many nodes the tree has per prefix length.
type SummaryCmd struct {
	InputFlags `embed:""`

	Aggregate bool    `help:"Aggregate the tree before summarizing it"`
	Threshold float64 `help:"Threshold used with --aggregate" default:"1.0"`
}

// Run executes the summary command.
func (cmd *SummaryCmd) Run(ctx *Context) error {
	tree, networks, err := cmd.load()
	if err != nil {
		return err
	}
	if cmd.Aggregate {
		if err := tree.Aggregate(cmd.Threshold); err != nil {
			return err
		}
	}

	summary := tree.Summary()
	fmt.Fprintf(ctx.Out, "Networks read: %s\n", humanize.Comma(int64(len(networks))))
	for _, prefixLen := range slices.Sorted(maps.Keys(summary.PrefixLens)) {
		fmt.Fprintf(ctx.Out, "/%-3d %s\n", prefixLen, humanize.Comma(int64(summary.PrefixLens[prefixLen])))
	}
	fmt.Fprintf(ctx.Out, "Total nodes: %s\n", humanize.Comma(int64(summary.Nodes)))
	fmt.Fprintf(ctx.Out, "Size: %s\n", humanize.Comma(int64(summary.Size)))
	fmt.Fprintf(ctx.Out, "Terminal nodes: %s\n", humanize.Comma(int64(summary.Terminal)))
	return nil
}
