package cli

import (
	"fmt"

	"github.com/khalid-nowaf/ipv4tree"
)

// DeleteCmd removes networks that were read on their own and prints the cover
// that remains.
type DeleteCmd struct {
	InputFlags `embed:""`

	Networks []string `name:"network" help:"Networks to delete, exactly as they were inserted" required:""`
}

// Run executes the delete command.
func (cmd *DeleteCmd) Run(ctx *Context) error {
	tree, _, err := cmd.load()
	if err != nil {
		return err
	}

	for _, value := range cmd.Networks {
		network, err := ipv4tree.ParseNetwork(value)
		if err != nil {
			return err
		}
		if !tree.Contains(network) {
			fmt.Fprintf(ctx.Out, "not inserted on its own, ignored: %s\n", network)
			continue
		}
		if err := tree.Delete(network); err != nil {
			return err
		}
		log.WithField("network", network).Info("network deleted")
	}

	for _, block := range tree.Cover() {
		fmt.Fprintln(ctx.Out, block)
	}
	return nil
}
