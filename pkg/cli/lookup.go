package cli

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"
	"strings"

	"github.com/khalid-nowaf/ipv4tree"
)

// LookupCmd reports the block covering each address.
type LookupCmd struct {
	InputFlags `embed:""`

	Addresses []string `name:"ip" help:"Addresses or networks to look up" required:""`
	Aggregate bool     `help:"Aggregate the tree before the lookups"`
	Threshold float64  `help:"Threshold used with --aggregate" default:"1.0"`
}

// Run executes the lookup command.
func (cmd *LookupCmd) Run(ctx *Context) error {
	tree, _, err := cmd.load()
	if err != nil {
		return err
	}
	if cmd.Aggregate {
		if err := tree.Aggregate(cmd.Threshold); err != nil {
			return err
		}
	}

	for _, address := range cmd.Addresses {
		network, err := ipv4tree.ParseNetwork(address)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.Out, describeLookup(tree, network))
	}
	return nil
}

func describeLookup(tree *ipv4tree.Tree, network netip.Prefix) string {
	block := tree.Supernet(network)
	if block == nil {
		return fmt.Sprintf("%s\tin-tree=%t\tblock=none", network, tree.InTree(network))
	}

	line := fmt.Sprintf("%s\tin-tree=%t\tblock=%s", network, tree.InTree(network), block.Prefix())
	if block.Info != nil && len(block.Info.Attributes) > 0 {
		attributes := []string{}
		for _, key := range slices.Sorted(maps.Keys(block.Info.Attributes)) {
			attributes = append(attributes, key+"="+block.Info.Attributes[key])
		}
		line += "\t" + strings.Join(attributes, " ")
	}
	return line
}
