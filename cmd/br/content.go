package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var htmlPage int

var htmlCmd = &cobra.Command{
	Use:   "html",
	Short: "Print the active tab's HTML with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if htmlPage >= 0 {
			q.Set("page", strconv.Itoa(htmlPage))
		}
		resp := getPlain("/html", q)
		fmt.Println(resp.String())
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the joined accessibility/DOM tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		printResponse(getPlain("/tree", nil))
		return nil
	},
}

var extractTextSelector string

var extractTextCmd = &cobra.Command{
	Use:   "extract-text",
	Short: "Extract visible text from the page or a selector",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/extract-text", map[string]interface{}{"selector": extractTextSelector})
		return nil
	},
}

var (
	screenshotFullPage bool
	screenshotPath     string
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a PNG screenshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if screenshotFullPage {
			q.Set("fullPage", "true")
		}
		if screenshotPath != "" {
			q.Set("path", screenshotPath)
		}
		resp := getPlain("/screenshot", q)
		fmt.Println(resp.String())
		return nil
	},
}

var (
	pdfFormat string
	pdfPath   string
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Export the page as a PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if pdfFormat != "" {
			q.Set("format", pdfFormat)
		}
		if pdfPath != "" {
			q.Set("path", pdfPath)
		}
		resp := getPlain("/pdf", q)
		fmt.Println(resp.String())
		return nil
	},
}

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <selector>",
	Args:  cobra.ExactArgs(1),
	Short: "Download the file linked by an element",
	RunE: func(cmd *cobra.Command, args []string) error {
		postPlain("/download", map[string]interface{}{"selector": args[0], "output": downloadOutput})
		return nil
	},
}

func init() {
	htmlCmd.Flags().IntVar(&htmlPage, "page", -1, "tab index (default: active tab)")
	extractTextCmd.Flags().StringVar(&extractTextSelector, "selector", "", "element selector (default: body)")
	screenshotCmd.Flags().BoolVar(&screenshotFullPage, "full-page", false, "capture the full scrollable page")
	screenshotCmd.Flags().StringVar(&screenshotPath, "path", "", "output path (default: temp dir)")
	pdfCmd.Flags().StringVar(&pdfFormat, "format", "", "page format (default: Letter)")
	pdfCmd.Flags().StringVar(&pdfPath, "path", "", "output path (default: temp dir)")
	downloadCmd.Flags().StringVar(&downloadOutput, "output", "", "output path (default: inferred filename in temp dir)")

	rootCmd.AddCommand(htmlCmd, treeCmd, extractTextCmd, screenshotCmd, pdfCmd, downloadCmd)
}
