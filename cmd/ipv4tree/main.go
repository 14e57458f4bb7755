package main

import (
	"fmt"
	"os"

	"github.com/khalid-nowaf/ipv4tree/pkg/cli"
)

func main() {
	if err := cli.Run(os.Args[1:], os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
