package branding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	assert.Equal(t, "pipegen", CLIName())
	assert.Equal(t, "PIPEGEN", EnvPrefix())
	assert.Equal(t, "pipegen", ConfigDir())
	assert.NotEmpty(t, Description())
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "PIPEGEN_TEMPLATES", EnvVar("templates"))
	assert.Equal(t, "PIPEGEN_ORG_NAME", EnvVar("org_name"))
}
