package daemon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecretsReplacesAttributeValue(t *testing.T) {
	html := `<html><body><input id="pwd" value="hunter2"></body></html>`
	masked := MaskSecrets(html, []string{"hunter2"})

	assert.Contains(t, masked, `value="***"`)
	assert.False(t, strings.Contains(masked, "hunter2"))
}

func TestMaskSecretsReplacesTextNode(t *testing.T) {
	html := `<html><body><p>the password is hunter2</p></body></html>`
	masked := MaskSecrets(html, []string{"hunter2"})

	assert.Contains(t, masked, "the password is ***")
}

func TestMaskSecretsNoSecretsIsNoop(t *testing.T) {
	html := `<html><body>hello</body></html>`
	assert.Equal(t, html, MaskSecrets(html, nil))
}

func TestMaskSecretsMultipleOccurrences(t *testing.T) {
	html := `<p>hunter2 and hunter2 again</p>`
	masked := MaskSecrets(html, []string{"hunter2"})
	assert.Equal(t, 0, strings.Count(masked, "hunter2"))
	assert.Equal(t, 2, strings.Count(masked, "***"))
}
