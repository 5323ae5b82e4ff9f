package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/entrhq/br/pkg/registry"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered daemon instances",
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	listColStyle    = lipgloss.NewStyle().PaddingRight(3)
)

func runList(cmd *cobra.Command, args []string) error {
	reg, err := registry.New("")
	if err != nil {
		return err
	}
	entries, err := reg.Read()
	if err != nil {
		return err
	}
	rows := registry.List(entries)

	if jsonOutput {
		out, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	if len(rows) == 0 {
		fmt.Println("no daemon instances running")
		return nil
	}

	fmt.Println(listColStyle.Render(listHeaderStyle.Render("NAME")) +
		listColStyle.Render(listHeaderStyle.Render("PORT")) +
		listColStyle.Render(listHeaderStyle.Render("PID")))
	for _, row := range rows {
		fmt.Fprintf(os.Stdout, "%-20s%-10d%-10d\n", row.Name, row.Port, row.PID)
	}
	return nil
}
