package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "List open tabs",
	RunE:  runTabs,
}

var tabsSwitchCmd = &cobra.Command{
	Use:   "switch <index>",
	Short: "Switch the active tab",
	Args:  cobra.ExactArgs(1),
	RunE:  runTabsSwitch,
}

func init() {
	tabsCmd.AddCommand(tabsSwitchCmd)
	rootCmd.AddCommand(tabsCmd)
}

type tabInfo struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	IsActive bool   `json:"isActive"`
}

func runTabs(cmd *cobra.Command, args []string) error {
	resp := getPlain("/tabs", nil)
	if jsonOutput {
		printResponse(resp)
		return nil
	}

	var tabs []tabInfo
	if err := resp.JSON(&tabs); err != nil {
		fmt.Println(resp.String())
		return nil
	}
	for _, t := range tabs {
		marker := " "
		if t.IsActive {
			marker = "*"
		}
		fmt.Printf("%s %d  %-40s %s\n", marker, t.Index, t.Title, t.URL)
	}
	return nil
}

func runTabsSwitch(cmd *cobra.Command, args []string) error {
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid tab index %q", args[0])
	}
	postPlain("/tabs/switch", map[string]interface{}{"index": idx})
	return nil
}
