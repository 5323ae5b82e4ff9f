package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

var scrollIntoViewCmd = &cobra.Command{
	Use:   "scroll-into-view <selector>",
	Args:  cobra.ExactArgs(1),
	Short: "Scroll an element into view",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/scroll-into-view", map[string]interface{}{"selector": args[0]})
		return nil
	},
}

var scrollToCmd = &cobra.Command{
	Use:   "scroll-to <percentage>",
	Args:  cobra.ExactArgs(1),
	Short: "Scroll to a percentage of the page height",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}
		postPlain("/scroll-to", map[string]interface{}{"percentage": p})
		return nil
	},
}

var nextChunkCmd = &cobra.Command{
	Use:   "next-chunk",
	Short: "Scroll down one viewport height",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/next-chunk", nil)
		return nil
	},
}

var prevChunkCmd = &cobra.Command{
	Use:   "prev-chunk",
	Short: "Scroll up one viewport height",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/prev-chunk", nil)
		return nil
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill <selector> <text>",
	Args:  cobra.ExactArgs(2),
	Short: "Set an input's value",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/fill", map[string]interface{}{"selector": args[0], "text": args[1]})
		return nil
	},
}

var fillSecretCmd = &cobra.Command{
	Use:   "fill-secret <selector> <secret>",
	Args:  cobra.ExactArgs(2),
	Short: "Set an input's value and mask it in future /html responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/fill-secret", map[string]interface{}{"selector": args[0], "secret": args[1]})
		return nil
	},
}

var typeCmd = &cobra.Command{
	Use:   "type <selector> <text>",
	Args:  cobra.ExactArgs(2),
	Short: "Type text into an element",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/type", map[string]interface{}{"selector": args[0], "text": args[1]})
		return nil
	},
}

var pressCmd = &cobra.Command{
	Use:   "press <key>",
	Args:  cobra.ExactArgs(1),
	Short: "Press a keyboard key",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/press", map[string]interface{}{"key": args[0]})
		return nil
	},
}

var clickCmd = &cobra.Command{
	Use:   "click <selector>",
	Args:  cobra.ExactArgs(1),
	Short: "Click an element",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/click", map[string]interface{}{"selector": args[0]})
		return nil
	},
}

var fillSearchSelector string

var fillSearchCmd = &cobra.Command{
	Use:   "fill-search <query>",
	Args:  cobra.ExactArgs(1),
	Short: "Fill and submit a search box",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/fill-search", map[string]interface{}{"query": args[0], "selector": fillSearchSelector})
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <selector> <value>",
	Args:  cobra.ExactArgs(2),
	Short: "Set a <select> element's value",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/select", map[string]interface{}{"selector": args[0], "value": args[1]})
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <selector>",
	Args:  cobra.ExactArgs(1),
	Short: "Submit the enclosing form",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/submit", map[string]interface{}{"selector": args[0]})
		return nil
	},
}

func init() {
	fillSearchCmd.Flags().StringVar(&fillSearchSelector, "selector", "", "search box selector (auto-detected if omitted)")
	rootCmd.AddCommand(
		scrollIntoViewCmd, scrollToCmd, nextChunkCmd, prevChunkCmd,
		fillCmd, fillSecretCmd, typeCmd, pressCmd, clickCmd,
		fillSearchCmd, selectCmd, submitCmd,
	)
}
