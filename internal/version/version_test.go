package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.2.0", Commit: "0123456789abcdef", BuildDate: "2026-01-01"}
	assert.Equal(t, "1.2.0 (commit: 0123456, built: 2026-01-01)", info.String())

	info.Commit = "unknown"
	assert.Equal(t, "1.2.0 (built: 2026-01-01)", info.String())
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, SchemaFormat, info.SchemaFormat)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Full(), "Schema format: "+SchemaFormat)
}
