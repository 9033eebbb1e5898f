package main

import (
	"flag"
	"fmt"

	"github.com/dudk/phonograph/vst2"
)

type listCommand struct {
	scan stringList
}

func (cmd *listCommand) Name() string {
	return "list"
}

func (cmd *listCommand) Help() string {
	return "Show the list of available vst2 plugins"
}

func (cmd *listCommand) Register(fs *flag.FlagSet) {
	fs.Var(&cmd.scan, "scan", "semicolon separated paths to scan for plugins")
}

func (cmd *listCommand) Run() error {
	paths := append(vst2.DefaultScanPaths(), cmd.scan...)
	fmt.Printf("Scan paths:\n %v\n", paths)
	fmt.Printf("Available plugins:\n%v", vst2.Scan(paths...))
	return nil
}
