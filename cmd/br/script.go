package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/br/pkg/cliclient"
)

var evalCmd = &cobra.Command{
	Use:   "eval <script>",
	Args:  cobra.ExactArgs(1),
	Short: "Evaluate a script in the active page",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/eval", map[string]interface{}{"script": args[0]})
		return nil
	},
}

var (
	assertExpected string
	assertMessage  string
)

var assertCmd = &cobra.Command{
	Use:   "assert <script>",
	Args:  cobra.ExactArgs(1),
	Short: "Evaluate a script and assert its result",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]interface{}{"script": args[0], "message": assertMessage}
		if cmd.Flags().Changed("expected") {
			body["expected"] = assertExpected
		}
		resp := doPost("/assert", body)
		if cliclient.ExitForStatus(resp.StatusCode) != cliclient.ExitOK {
			os.Stderr.WriteString(resp.String() + "\n")
			os.Exit(cliclient.ExitError)
		}
		var out struct {
			Pass bool `json:"pass"`
		}
		_ = resp.JSON(&out)
		printResponse(resp)
		os.Exit(cliclient.ExitForAssert(resp.StatusCode, out.Pass))
		return nil
	},
}

func init() {
	assertCmd.Flags().StringVar(&assertExpected, "expected", "", "expected stringified result")
	assertCmd.Flags().StringVar(&assertMessage, "message", "", "assertion message")
	rootCmd.AddCommand(evalCmd, assertCmd)
}
