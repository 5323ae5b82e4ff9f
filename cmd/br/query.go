package main

import "github.com/spf13/cobra"

var existsCmd = &cobra.Command{
	Use:   "exists <selector>",
	Args:  cobra.ExactArgs(1),
	Short: "Check whether an element exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		boolResultExit(doPost("/exists", map[string]interface{}{"selector": args[0]}))
		return nil
	},
}

var visibleCmd = &cobra.Command{
	Use:   "visible <selector>",
	Args:  cobra.ExactArgs(1),
	Short: "Check whether an element is visible",
	RunE: func(cmd *cobra.Command, args []string) error {
		boolResultExit(doPost("/visible", map[string]interface{}{"selector": args[0]}))
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count <selector>",
	Args:  cobra.ExactArgs(1),
	Short: "Count elements matching a selector",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/count", map[string]interface{}{"selector": args[0]})
		return nil
	},
}

var attrCmd = &cobra.Command{
	Use:   "attr <selector> <attribute>",
	Args:  cobra.ExactArgs(2),
	Short: "Read an element's attribute",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/attr", map[string]interface{}{"selector": args[0], "attribute": args[1]})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(existsCmd, visibleCmd, countCmd, attrCmd)
}
