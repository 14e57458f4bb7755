package cli

import (
	"io"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "cli")

// Context is passed to the Run method of every command.
type Context struct {
	Out io.Writer
}

// Commands is the command line of the ipv4tree binary.
type Commands struct {
	LogLevel string          `help:"Log level: ${enum}" enum:"trace,debug,info,warn,error" default:"info"`
	Config   kong.ConfigFlag `help:"JSON file with default flag values"`

	Aggregate AggregateCmd `cmd:"" help:"Aggregate networks into a minimal cover"`
	Lookup    LookupCmd    `cmd:"" help:"Find the blocks covering addresses"`
	Summary   SummaryCmd   `cmd:"" help:"Describe the shape of the tree"`
	Delete    DeleteCmd    `cmd:"" help:"Delete networks and print the remaining cover"`
}

// NewParser builds the kong parser for cmds. Flag defaults are also read from
// ~/.ipv4tree.json when it exists.
func NewParser(cmds *Commands, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(cmds, append([]kong.Option{
		kong.Name("ipv4tree"),
		kong.Description("Summarize IPv4 networks into minimal CIDR blocks."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.ipv4tree.json"),
	}, options...)...)
}

// Run parses args and runs the selected command, writing its report to out.
func Run(args []string, out io.Writer) error {
	cmds := Commands{}
	parser, err := NewParser(&cmds, kong.Writers(out, out))
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cmds.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	return ctx.Run(&Context{Out: out})
}
