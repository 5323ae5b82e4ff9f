package daemon

import "strconv"

// selectorKind tags how a token was classified, rather than relying on
// dynamic typing at the call sites that consume it.
type selectorKind int

const (
	selectorCSS selectorKind = iota
	selectorXPath
	selectorNumericID
)

// resolvedSelector is the outcome of classifying and, for numeric IDs,
// resolving an agent-supplied selector token.
type resolvedSelector struct {
	kind  selectorKind
	token string // original token, for error messages
	value string // the selector or xpath string to hand to the driver
}

// ResolveSelector classifies token against the rules in the spec (numeric
// ID first, then XPath, then CSS) and, for a numeric ID, looks it up in the
// most recent ID->XPath map.
func ResolveSelector(state *State, token string) (resolvedSelector, *Error) {
	if n, err := strconv.Atoi(token); err == nil {
		xpath, ok := state.LookupXPath(n)
		if !ok {
			return resolvedSelector{}, SelectorMiss(token, "XPath not found for ID: %s", token)
		}
		return resolvedSelector{kind: selectorNumericID, token: token, value: xpath}, nil
	}

	if isXPathToken(token) {
		xpath := token
		if len(token) >= 6 && token[:6] == "xpath=" {
			xpath = token[6:]
		}
		return resolvedSelector{kind: selectorXPath, token: token, value: xpath}, nil
	}

	return resolvedSelector{kind: selectorCSS, token: token, value: token}, nil
}

func isXPathToken(token string) bool {
	if len(token) >= 6 && token[:6] == "xpath=" {
		return true
	}
	if len(token) == 0 {
		return false
	}
	return token[0] == '/' || token[0] == '('
}

// DriverSelector returns the selector string to pass to the driver. For
// CSS tokens it is the token verbatim; for XPath tokens and numeric IDs the
// XPath is given the driver's "xpath=" engine prefix, since the driver's
// own selector engine detection only covers its own syntax, not ours.
func (r resolvedSelector) DriverSelector() string {
	switch r.kind {
	case selectorXPath, selectorNumericID:
		return "xpath=" + r.value
	default:
		return r.value
	}
}
