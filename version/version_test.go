package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersion(t *testing.T) {
	assert.Equal(t, "dev", GetFullVersion())

	v, c, d := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = v, c, d })

	Version, GitCommit, BuildDate = "v1.2.0", "0123456789abcdef", "2025-01-02"
	assert.Equal(t, "v1.2.0", GetVersion())
	assert.Equal(t, "v1.2.0 (0123456, 2025-01-02)", GetFullVersion())
}
