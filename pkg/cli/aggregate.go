package cli

import (
	"fmt"
	"net/netip"

	"github.com/gaissmai/bart"
	"github.com/sirupsen/logrus"
)

// AggregateCmd writes the cover of the input networks at a fullness threshold.
type AggregateCmd struct {
	InputFlags `embed:""`

	Threshold float64 `help:"Minimal fraction of a block that must be present, within [0, 1]" default:"1.0"`
	Format    string  `help:"Output format: ${enum}" enum:"csv,tsv,json,yaml" default:"csv"`
	Output    string  `help:"Directory the cover is written to" type:"existingdir" default:"."`
	Verify    bool    `help:"Check that every input network lies inside the cover"`
}

// Run executes the aggregate command.
func (cmd *AggregateCmd) Run(ctx *Context) error {
	writer, err := NewWriter(cmd.Format)
	if err != nil {
		return err
	}

	tree, networks, err := cmd.load()
	if err != nil {
		return err
	}
	if err := tree.Aggregate(cmd.Threshold); err != nil {
		return err
	}

	cover := tree.Cover()
	if cmd.Verify {
		if err := verifyCover(cover, networks); err != nil {
			return err
		}
	}

	path, err := writer.Write(tree, cmd.Output, cmd.CidrKey)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"input":     len(networks),
		"output":    len(cover),
		"threshold": cmd.Threshold,
	}).Info("cover written")
	fmt.Fprintf(ctx.Out, "%d networks aggregated into %d blocks: %s\n", len(networks), len(cover), path)
	return nil
}

// verifyCover checks with an independent prefix table that every network is
// inside a block of the cover.
func verifyCover(cover []netip.Prefix, networks []netip.Prefix) error {
	table := new(bart.Table[struct{}])
	for _, block := range cover {
		table.Insert(block, struct{}{})
	}
	for _, network := range networks {
		if _, covered := table.LookupPrefix(network); !covered {
			return fmt.Errorf("network %s is not covered by the aggregated blocks", network)
		}
	}
	log.WithField("networks", len(networks)).Debug("cover verified")
	return nil
}
