package guard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ValidatePath validates a filesystem path for the given operation kind.
// Traversal components are rejected before any resolution; everything else
// is checked against the resolved canonical path, in order: platform
// blocked directories, configured allowed roots, sensitive (read-only)
// directories, then a read-only default for anything outside the project
// boundary.
func (g *Guard) ValidatePath(raw string, op Op, ctx Context) PathResult {
	if !g.enabled {
		return PathResult{
			Allowed: true,
			Reason:  "security validation is disabled",
		}
	}

	result := g.validatePath(raw, op, false)

	g.logger.Debug("path validated",
		zap.String("agent_id", ctx.AgentID),
		zap.String("request_id", ctx.RequestID),
		zap.String("op", string(op)),
		zap.String("resolved", result.ResolvedPath),
		zap.Bool("allowed", result.Allowed))

	return result
}

func (g *Guard) validatePath(raw string, op Op, expanded bool) PathResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PathResult{Allowed: false, Reason: "empty path"}
	}

	// Traversal is rejected before resolution. A leading ~ gets one
	// expansion pass first, so "~/../../etc" still fails the recursive
	// call's own traversal check.
	if strings.HasPrefix(trimmed, "~") && !expanded {
		home, err := os.UserHomeDir()
		if err != nil {
			return PathResult{
				Allowed: false,
				Reason:  fmt.Sprintf("cannot expand home directory: %v", err),
			}
		}
		return g.validatePath(home+trimmed[1:], op, true)
	}
	if containsTraversal(trimmed) {
		return PathResult{
			Allowed: false,
			Reason:  "path traversal (..) is not allowed",
		}
	}

	resolved, err := g.resolve(trimmed)
	if err != nil {
		return PathResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot resolve path: %v", err),
		}
	}

	// OS-critical system directories: no operation may touch these,
	// even when explicitly allow-listed.
	for _, blocked := range g.blockedPaths {
		if g.underRoot(resolved, blocked) {
			return PathResult{
				Allowed:      false,
				Reason:       fmt.Sprintf("path is under protected system directory %s", blocked),
				ResolvedPath: resolved,
			}
		}
	}

	g.mu.RLock()
	allowed := g.allowedPaths
	g.mu.RUnlock()
	for _, root := range allowed {
		if g.underRoot(resolved, root) {
			return PathResult{Allowed: true, ResolvedPath: resolved}
		}
	}

	for _, sensitive := range g.sensitivePaths {
		if g.underRoot(resolved, sensitive) {
			if op == OpRead {
				return PathResult{Allowed: true, ResolvedPath: resolved}
			}
			return PathResult{
				Allowed:      false,
				Reason:       fmt.Sprintf("%s to sensitive directory %s is not allowed", op, sensitive),
				ResolvedPath: resolved,
			}
		}
	}

	// Outside all known buckets: fail closed for anything that mutates.
	if op == OpRead {
		return PathResult{Allowed: true, ResolvedPath: resolved}
	}
	return PathResult{
		Allowed:      false,
		Reason:       fmt.Sprintf("%s outside the project directory is not allowed", op),
		ResolvedPath: resolved,
	}
}

// resolve produces the canonical absolute path used by the checks.
// Relative inputs are anchored at the project root. Symlinks are resolved
// when the target exists; a nonexistent target (the common case for a
// pending write) falls back to the cleaned absolute path.
func (g *Guard) resolve(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.projectRoot, path)
	}
	path = filepath.Clean(path)

	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	} else if !os.IsNotExist(err) {
		return "", err
	}

	return g.normalizeCase(path), nil
}

func containsTraversal(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// underRoot reports whether path equals root or sits beneath it.
func (g *Guard) underRoot(path, root string) bool {
	root = g.normalizeCase(filepath.Clean(root))
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
