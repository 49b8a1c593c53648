package cmd

import (
	"testing"

	"github.com/meysamhadeli/codesnap/code_snapshot"
	"github.com/meysamhadeli/codesnap/code_snapshot/models"
	"github.com/meysamhadeli/codesnap/config"
	"github.com/meysamhadeli/codesnap/token_management"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatherTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "gather"}
	addGatherFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyProfileOverrides_OnlyChangedFlags(t *testing.T) {
	profile := *config.DefaultConfig().Profiles["android"]

	unchanged := applyProfileOverrides(newGatherTestCommand(t), profile)
	assert.Equal(t, profile, unchanged)

	overridden := applyProfileOverrides(newGatherTestCommand(t,
		"--root", "../app",
		"-o", "app.txt",
		"--ext", ".kt,.kts",
	), profile)

	assert.Equal(t, "../app", overridden.Root)
	assert.Equal(t, "app.txt", overridden.Output)
	assert.Equal(t, []string{".kt", ".kts"}, overridden.Extensions)
	assert.Equal(t, profile.IgnoreDirs, overridden.IgnoreDirs)
}

func TestFormatChanges(t *testing.T) {
	assert.Empty(t, formatChanges(nil))
	assert.Empty(t, formatChanges(&models.ChangeSummary{FirstRun: true, Added: []string{"a.kt"}}))
	assert.Equal(t, "No changes since the previous snapshot.", formatChanges(&models.ChangeSummary{Unchanged: 3}))
	assert.Equal(t, "Since the previous snapshot: 2 added, 1 removed.", formatChanges(&models.ChangeSummary{
		Added:   []string{"a.kt", "b.kt"},
		Removed: []string{"c.kt"},
	}))
}

func TestHandleGatherCommand_WritesSnapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/src/index.ts", []byte("export {}\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/srv/node_modules/x/index.js", []byte("ignored"), 0644))

	tokens := token_management.NewTokenManager()
	deps := &RootDependencies{
		Fs:              fs,
		Gatherer:        code_snapshot.NewGatherer(fs, nil, nil),
		TokenManagement: tokens,
	}

	profile := *config.DefaultConfig().Profiles["server"]
	profile.Root = "/srv"
	profile.Output = "/server_code_snapshot.txt"

	require.NoError(t, handleGatherCommand(deps, profile))

	data, err := afero.ReadFile(fs, profile.Output)
	require.NoError(t, err)
	assert.Equal(t, "\n\n--- FILE: src/index.ts ---\n\nexport {}\n", string(data))
	assert.Greater(t, tokens.GetCurrentTokenUsage(), 0)
}

func TestHandleGatherCommand_MissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	deps := &RootDependencies{
		Fs:              fs,
		Gatherer:        code_snapshot.NewGatherer(fs, nil, nil),
		TokenManagement: token_management.NewTokenManager(),
	}

	profile := *config.DefaultConfig().Profiles["android"]
	profile.Root = "/missing"
	profile.Output = "/android_code_snapshot.txt"

	err := handleGatherCommand(deps, profile)
	assert.ErrorIs(t, err, code_snapshot.ErrRootNotFound)

	exists, _ := afero.Exists(fs, profile.Output)
	assert.False(t, exists)
}
