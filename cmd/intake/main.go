// Command intake is the CLI entry point.
package main

import "github.com/orderflow/intake/internal/interfaces/cli"

func main() {
	cli.Execute()
}
