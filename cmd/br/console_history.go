package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	consoleType  string
	consoleTab   int
	consoleClear bool
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Read captured console messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if consoleType != "" {
			q.Set("type", consoleType)
		}
		if consoleTab >= 0 {
			q.Set("tab", strconv.Itoa(consoleTab))
		}
		if consoleClear {
			q.Set("clear", "true")
		}
		printResponse(getPlain("/console", q))
		return nil
	},
}

var consoleClearCmd = &cobra.Command{
	Use:   "console-clear",
	Short: "Clear captured console messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/console/clear", nil)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the action history",
	RunE: func(cmd *cobra.Command, args []string) error {
		printResponse(getPlain("/history", nil))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "history-clear",
	Short: "Clear the action history",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/history/clear", nil)
		return nil
	},
}

func init() {
	consoleCmd.Flags().StringVar(&consoleType, "type", "", "comma-separated console message types to include")
	consoleCmd.Flags().IntVar(&consoleTab, "tab", -1, "filter to a single tab index")
	consoleCmd.Flags().BoolVar(&consoleClear, "clear", false, "clear after reading")

	rootCmd.AddCommand(consoleCmd, consoleClearCmd, historyCmd, historyClearCmd)
}
