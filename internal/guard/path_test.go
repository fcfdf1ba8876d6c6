package guard

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-guard/mcpguard-go/internal/config"
)

func TestValidatePath_TraversalRejectedBeforeResolution(t *testing.T) {
	g := newTestGuard(t, runtime.GOOS)

	for _, path := range []string{
		"../outside.txt",
		"src/../../etc/passwd",
		"..",
		"foo/..",
	} {
		result := g.ValidatePath(path, OpRead, Context{})
		assert.False(t, result.Allowed, "path %q", path)
		assert.Contains(t, result.Reason, "traversal")
		assert.Empty(t, result.ResolvedPath, "traversal rejections happen before resolution")
	}
}

func TestValidatePath_HomeTraversalStillRejected(t *testing.T) {
	g := newTestGuard(t, runtime.GOOS)

	// The leading ~ gets one expansion pass; the recursive check still
	// catches the traversal hiding behind it.
	result := g.ValidatePath("~/../../etc/passwd", OpRead, Context{})
	assert.False(t, result.Allowed)
	assert.Contains(t, result.Reason, "traversal")
}

func TestValidatePath_ProjectRootWriteAllowed(t *testing.T) {
	root := t.TempDir()
	g := NewForPlatform(runtime.GOOS, config.DefaultConfig(), root, nil)

	for _, op := range []Op{OpRead, OpWrite, OpDelete} {
		result := g.ValidatePath(filepath.Join(root, "notes.txt"), op, Context{})
		assert.True(t, result.Allowed, "op %s", op)
		assert.NotEmpty(t, result.ResolvedPath)
	}

	// Relative paths anchor at the project root.
	result := g.ValidatePath("sub/dir/file.go", OpWrite, Context{})
	assert.True(t, result.Allowed)
	assert.True(t, filepath.IsAbs(result.ResolvedPath))
}

func TestValidatePath_OutsideProjectFailsClosed(t *testing.T) {
	g := NewForPlatform("linux", config.DefaultConfig(), t.TempDir(), nil)

	outside := "/opt/elsewhere/data.txt"

	result := g.ValidatePath(outside, OpRead, Context{})
	assert.True(t, result.Allowed, "reads outside the project are tolerated")

	for _, op := range []Op{OpWrite, OpDelete} {
		result := g.ValidatePath(outside, op, Context{})
		assert.False(t, result.Allowed, "op %s", op)
		assert.NotEmpty(t, result.Reason)
	}
}

func TestValidatePath_BlockedSystemDirectories(t *testing.T) {
	g := NewForPlatform("linux", config.DefaultConfig(), t.TempDir(), nil)

	for _, path := range []string{"/etc/passwd", "/boot/grub/grub.cfg", "/sys/kernel/x"} {
		for _, op := range []Op{OpRead, OpWrite, OpDelete} {
			result := g.ValidatePath(path, op, Context{})
			assert.False(t, result.Allowed, "path %q op %s", path, op)
		}
	}
}

func TestValidatePath_SensitiveDirectoriesReadOnly(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	g := NewForPlatform("linux", config.DefaultConfig(), t.TempDir(), nil)
	key := filepath.Join(home, ".ssh", "id_ed25519")

	result := g.ValidatePath(key, OpRead, Context{})
	assert.True(t, result.Allowed)

	for _, op := range []Op{OpWrite, OpDelete} {
		result := g.ValidatePath(key, op, Context{})
		assert.False(t, result.Allowed, "op %s", op)
		assert.Contains(t, result.Reason, "sensitive")
	}
}

func TestValidatePath_AddAllowedPath(t *testing.T) {
	g := NewForPlatform("linux", config.DefaultConfig(), t.TempDir(), nil)

	target := "/opt/shared/cache.json"
	result := g.ValidatePath(target, OpWrite, Context{})
	require.False(t, result.Allowed)

	g.AddAllowedPath("/opt/shared")

	result = g.ValidatePath(target, OpWrite, Context{})
	assert.True(t, result.Allowed)
}

func TestValidatePath_ConfiguredAllowedPaths(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filesystem.AllowedPaths = []string{"/srv/workspace"}
	g := NewForPlatform("linux", cfg, t.TempDir(), nil)

	result := g.ValidatePath("/srv/workspace/out.bin", OpWrite, Context{})
	assert.True(t, result.Allowed)
}

func TestValidatePath_EmptyPath(t *testing.T) {
	g := newTestGuard(t, runtime.GOOS)

	result := g.ValidatePath("  ", OpRead, Context{})
	assert.False(t, result.Allowed)
}

func TestValidatePath_DisabledBypassesAllChecks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Enabled = false
	g := NewForPlatform("linux", cfg, t.TempDir(), nil)

	for _, path := range []string{"/etc/passwd", "../outside.txt"} {
		for _, op := range []Op{OpRead, OpWrite, OpDelete} {
			result := g.ValidatePath(path, op, Context{})
			assert.True(t, result.Allowed, "path %q op %s", path, op)
		}
	}
}

func TestValidatePath_BlockedWinsOverAllowed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filesystem.AllowedPaths = []string{"/etc"}
	g := NewForPlatform("linux", cfg, t.TempDir(), nil)

	// System directories stay blocked even when allow-listed.
	result := g.ValidatePath("/etc/hosts", OpRead, Context{})
	assert.False(t, result.Allowed)
}
