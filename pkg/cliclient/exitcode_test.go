package cliclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitForStatus(t *testing.T) {
	assert.Equal(t, ExitOK, ExitForStatus(200))
	assert.Equal(t, ExitOK, ExitForStatus(204))
	assert.Equal(t, ExitError, ExitForStatus(400))
	assert.Equal(t, ExitError, ExitForStatus(500))
}

func TestExitForBoolPresentSelector(t *testing.T) {
	assert.Equal(t, ExitOK, ExitForBool(200, true))
}

func TestExitForBoolMissingSelector(t *testing.T) {
	assert.Equal(t, ExitFalsy, ExitForBool(200, false))
}

func TestExitForBoolDaemonDown(t *testing.T) {
	assert.Equal(t, ExitError, ExitForBool(500, true))
	assert.Equal(t, ExitError, ExitForBool(500, false))
}

func TestExitForAssertMirrorsExitForBool(t *testing.T) {
	assert.Equal(t, ExitOK, ExitForAssert(200, true))
	assert.Equal(t, ExitFalsy, ExitForAssert(200, false))
	assert.Equal(t, ExitError, ExitForAssert(400, true))
}
