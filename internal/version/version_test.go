package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAndString(t *testing.T) {
	info := Get()
	assert.Equal(t, Info{Version: Version, GitSHA: GitSHA, BuildTime: BuildTime}, info)
	assert.Contains(t, String(), "lattice.report "+Version)
}
