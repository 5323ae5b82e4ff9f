package main

import "github.com/spf13/cobra"

var waitTimeout float64

var waitCmd = &cobra.Command{
	Use:   "wait <selector>",
	Args:  cobra.ExactArgs(1),
	Short: "Wait for an element to become visible",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/wait", map[string]interface{}{"selector": args[0], "timeout": waitTimeout})
		return nil
	},
}

var waitLoadCmd = &cobra.Command{
	Use:   "wait-load",
	Short: "Wait for the load event",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/wait-load", nil)
		return nil
	},
}

var waitStableCmd = &cobra.Command{
	Use:   "wait-stable",
	Short: "Wait for the DOM to stop mutating",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/wait-stable", nil)
		return nil
	},
}

var waitIdleCmd = &cobra.Command{
	Use:   "wait-idle",
	Short: "Wait for the network to go idle",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/wait-idle", nil)
		return nil
	},
}

func init() {
	waitCmd.Flags().Float64Var(&waitTimeout, "timeout", 0, "timeout in milliseconds (default 30000)")
	rootCmd.AddCommand(waitCmd, waitLoadCmd, waitStableCmd, waitIdleCmd)
}
