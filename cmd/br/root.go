// Command br is the CLI front-end for the br browser-automation daemon:
// it resolves a named instance through the shared registry and forwards
// each subcommand to that daemon's HTTP surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/br/pkg/cliclient"
)

var (
	instanceName string
	jsonOutput   bool
)

var rootCmd = &cobra.Command{
	Use:   "br",
	Short: "Control a local browser-automation daemon",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&instanceName, "name", "default", "target daemon instance")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of a formatted table")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliclient.ExitError)
	}
}

// client resolves the target instance or exits 2 with "daemon is not
// running", matching the CLI exit-code table's "no daemon" family.
func client() *cliclient.Client {
	c, err := cliclient.Resolve(instanceName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "daemon is not running")
		os.Exit(cliclient.ExitError)
	}
	return c
}
