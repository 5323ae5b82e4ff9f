package daemon

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

const secretReplacement = "***"

// MaskSecrets replaces every occurrence of every secret value in rawHTML
// with "***". It parses the document and walks text nodes and attribute
// values so that entity-escaped occurrences (e.g. a secret containing
// "&") are still masked correctly; if parsing fails for any reason it
// falls back to a plain string replace over the raw bytes.
func MaskSecrets(rawHTML string, secrets []string) string {
	if len(secrets) == 0 {
		return rawHTML
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return maskPlain(rawHTML, secrets)
	}

	maskNode(doc, secrets)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return maskPlain(rawHTML, secrets)
	}
	return buf.String()
}

func maskNode(n *html.Node, secrets []string) {
	switch n.Type {
	case html.TextNode:
		n.Data = maskPlain(n.Data, secrets)
	case html.ElementNode:
		for i, attr := range n.Attr {
			n.Attr[i].Val = maskPlain(attr.Val, secrets)
		}
	case html.CommentNode:
		n.Data = maskPlain(n.Data, secrets)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		maskNode(c, secrets)
	}
}

func maskPlain(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, secretReplacement)
	}
	return s
}
