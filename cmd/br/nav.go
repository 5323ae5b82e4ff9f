package main

import "github.com/spf13/cobra"

var gotoCmd = &cobra.Command{
	Use:   "goto <url>",
	Short: "Navigate the active tab",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/goto", map[string]interface{}{"url": args[0]})
		return nil
	},
}

var backCmd = &cobra.Command{
	Use:   "back",
	Short: "Navigate back in history",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/back", nil)
		return nil
	},
}

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Navigate forward in history",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/forward", nil)
		return nil
	},
}

var reloadHard bool

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the active tab",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/reload", map[string]interface{}{"hard": reloadHard})
		return nil
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Clear the browser cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/clear-cache", nil)
		return nil
	},
}

func init() {
	reloadCmd.Flags().BoolVar(&reloadHard, "hard", false, "bypass cache on reload")
	rootCmd.AddCommand(gotoCmd, backCmd, forwardCmd, reloadCmd, clearCacheCmd)
}
