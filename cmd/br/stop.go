package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/br/pkg/cliclient"
	"github.com/entrhq/br/pkg/registry"
)

var stopAll bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Shut down a daemon instance",
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
	stopCmd.Flags().BoolVar(&stopAll, "all", false, "stop every registered instance")
}

func runStop(cmd *cobra.Command, args []string) error {
	if stopAll {
		return stopAllInstances()
	}
	stopOne(instanceName, true)
	return nil
}

// stopOne shuts down one instance. When exitOnFailure is false (the --all
// path) a single unreachable instance is reported and skipped instead of
// aborting the whole sweep.
func stopOne(name string, exitOnFailure bool) {
	c, err := cliclient.Resolve(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "instance %q is not running\n", name)
		if exitOnFailure {
			os.Exit(cliclient.ExitError)
		}
		return
	}
	if _, err := c.Post("/shutdown", nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitOnFailure {
			os.Exit(cliclient.ExitError)
		}
		return
	}
	fmt.Printf("stopped %q\n", name)
}

func stopAllInstances() error {
	reg, err := registry.New("")
	if err != nil {
		return err
	}
	entries, err := reg.Read()
	if err != nil {
		return err
	}
	for _, e := range registry.List(entries) {
		stopOne(e.Name, false)
	}
	return nil
}
