package cli

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBuild_LinkedVersion(t *testing.T) {
	orig := Version
	Version = "v1.2.0"
	t.Cleanup(func() { Version = orig })

	info := CurrentBuild()
	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestVersionCmd(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		versionCmd.SetOut(&buf)
		require.NoError(t, versionCmd.RunE(versionCmd, nil))
		assert.Contains(t, buf.String(), "sitework ")
		assert.Contains(t, buf.String(), Commit)
	})

	t.Run("json", func(t *testing.T) {
		require.NoError(t, rootCmd.PersistentFlags().Set("json", "true"))
		t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("json", "false") })

		var buf bytes.Buffer
		versionCmd.SetOut(&buf)
		require.NoError(t, versionCmd.RunE(versionCmd, nil))

		var info BuildInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
		assert.Equal(t, BuildDate, info.BuildDate)
	})
}
