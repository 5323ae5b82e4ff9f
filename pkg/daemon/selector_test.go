package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSelectorNumericIDKnown(t *testing.T) {
	state := NewState()
	state.ReplaceIDXPathMap(map[int]string{42: "/html/body"})

	r, err := ResolveSelector(state, "42")
	require.Nil(t, err)
	assert.Equal(t, selectorNumericID, r.kind)
	assert.Equal(t, "/html/body", r.value)
	assert.Equal(t, "xpath=/html/body", r.DriverSelector())
}

func TestResolveSelectorNumericIDUnknown(t *testing.T) {
	state := NewState()
	state.ReplaceIDXPathMap(map[int]string{1: "/html/body"})

	_, err := ResolveSelector(state, "42")
	require.NotNil(t, err)
	assert.Equal(t, KindSelectorMiss, err.Kind)
	assert.Contains(t, err.Message, "XPath not found for ID")
	assert.Equal(t, "42", err.Token)
}

func TestResolveSelectorCSS(t *testing.T) {
	state := NewState()
	r, err := ResolveSelector(state, "button.submit")
	require.Nil(t, err)
	assert.Equal(t, selectorCSS, r.kind)
	assert.Equal(t, "button.submit", r.DriverSelector())
}

func TestResolveSelectorXPathSlash(t *testing.T) {
	state := NewState()
	r, err := ResolveSelector(state, "//button[1]")
	require.Nil(t, err)
	assert.Equal(t, selectorXPath, r.kind)
	assert.Equal(t, "xpath=//button[1]", r.DriverSelector())
}

func TestResolveSelectorXPathPrefixed(t *testing.T) {
	state := NewState()
	r, err := ResolveSelector(state, "xpath=//div")
	require.Nil(t, err)
	assert.Equal(t, selectorXPath, r.kind)
	assert.Equal(t, "//div", r.value)
}

func TestResolveSelectorXPathParen(t *testing.T) {
	state := NewState()
	r, err := ResolveSelector(state, "(//a)[1]")
	require.Nil(t, err)
	assert.Equal(t, selectorXPath, r.kind)
}
