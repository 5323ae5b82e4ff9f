package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/entrhq/br/pkg/cliclient"
)

// postPlain issues a POST and exits per the plain-command exit family:
// 0 on 2xx, 2 otherwise (daemon error or bad input). It prints the
// response body (or its "status"/"url"/etc. field set, JSON-formatted
// when --json is set) and returns the response for callers that need to
// inspect it further.
func postPlain(path string, body interface{}) *cliclient.Response {
	resp, err := client().Post(path, body)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliclient.ExitError)
	}
	if cliclient.ExitForStatus(resp.StatusCode) != cliclient.ExitOK {
		fmt.Fprintln(os.Stderr, resp.String())
		os.Exit(cliclient.ExitError)
	}
	printResponse(resp)
	return resp
}

func getPlain(path string, query url.Values) *cliclient.Response {
	resp, err := client().Get(path, query)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliclient.ExitError)
	}
	if cliclient.ExitForStatus(resp.StatusCode) != cliclient.ExitOK {
		fmt.Fprintln(os.Stderr, resp.String())
		os.Exit(cliclient.ExitError)
	}
	return resp
}

// printResponse prints a daemon response. JSON bodies are re-indented
// when --json is requested; plain-text bodies are printed verbatim
// either way.
func printResponse(resp *cliclient.Response) {
	if !jsonOutput {
		printHuman(resp.Body)
		return
	}
	var v interface{}
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		fmt.Println(resp.String())
		return
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

// printHuman prints the status, url, value, count, result, path and
// selector fields of a JSON object, one "key: value" line each, in that
// order; other fields are not printed. A body that is not a JSON object
// (the plain-text endpoints, or a JSON array) is printed raw.
func printHuman(body []byte) {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		fmt.Println(string(body))
		return
	}
	for _, key := range []string{"status", "url", "value", "count", "result", "path", "selector"} {
		if v, ok := m[key]; ok {
			fmt.Printf("%s: %v\n", key, v)
		}
	}
}

// doPost issues a POST without the plain-command exit mapping, for
// commands (exists/visible/assert) that need to inspect the body
// themselves before deciding the exit code.
func doPost(path string, body interface{}) *cliclient.Response {
	resp, err := client().Post(path, body)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliclient.ExitError)
	}
	return resp
}

func boolResultExit(resp *cliclient.Response) {
	var out struct {
		Result bool `json:"result"`
	}
	_ = resp.JSON(&out)
	printResponse(resp)
	os.Exit(cliclient.ExitForBool(resp.StatusCode, out.Result))
}
