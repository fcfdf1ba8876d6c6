package guard

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mcp-guard/mcpguard-go/internal/config"
)

// Guard validates commands and paths against built-in rule tables plus the
// deployment's configured policy. Construct one per project root and share
// it; validation calls are pure reads except for AddAllowedPath.
type Guard struct {
	logger   *zap.Logger
	platform string
	enabled  bool
	mode     config.Mode

	projectRoot string
	homeDir     string

	mu           sync.RWMutex
	allowedPaths []string

	extraSafe      map[string]bool
	extraBlocked   []string
	blockedPaths   []string
	sensitivePaths []string
}

// New creates a Guard for the running platform.
func New(cfg *config.SecurityConfig, projectRoot string, logger *zap.Logger) *Guard {
	return NewForPlatform(runtime.GOOS, cfg, projectRoot, logger)
}

// NewForPlatform creates a Guard with an explicit platform identifier
// (a GOOS value). Useful for evaluating another platform's policy and for
// tests.
func NewForPlatform(platform string, cfg *config.SecurityConfig, projectRoot string, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}

	home, _ := os.UserHomeDir()

	g := &Guard{
		logger:      logger,
		platform:    normalizePlatform(platform),
		enabled:     true,
		mode:        config.ModeModerate,
		projectRoot: filepath.Clean(projectRoot),
		homeDir:     home,
		extraSafe:   map[string]bool{},
	}

	// Canonicalize the root so resolved targets compare against the same
	// form the resolver produces.
	if real, err := filepath.EvalSymlinks(g.projectRoot); err == nil {
		g.projectRoot = real
	}
	g.projectRoot = g.normalizeCase(g.projectRoot)

	if projectRoot != "" {
		g.allowedPaths = append(g.allowedPaths, g.projectRoot)
	}

	g.blockedPaths = append(g.blockedPaths, blockedPaths[g.platform]...)

	for _, suffix := range sensitivePathSuffixes {
		if home != "" {
			g.sensitivePaths = append(g.sensitivePaths, filepath.Join(home, filepath.FromSlash(suffix)))
		}
	}

	if cfg != nil {
		g.enabled = cfg.Enabled
		if cfg.Mode != "" {
			g.mode = cfg.Mode
		}
		if cfg.Commands != nil {
			for _, cmd := range cfg.Commands.SafeList {
				g.extraSafe[strings.ToLower(cmd)] = true
			}
			g.extraBlocked = append(g.extraBlocked, cfg.Commands.BlockedPatterns...)
		}
		if cfg.Filesystem != nil {
			for _, p := range cfg.Filesystem.AllowedPaths {
				g.allowedPaths = append(g.allowedPaths, g.normalizeCase(filepath.Clean(expandHome(p, home))))
			}
			for _, p := range cfg.Filesystem.BlockedPaths {
				g.blockedPaths = append(g.blockedPaths, filepath.Clean(expandHome(p, home)))
			}
			for _, p := range cfg.Filesystem.SensitivePaths {
				g.sensitivePaths = append(g.sensitivePaths, filepath.Clean(expandHome(p, home)))
			}
		}
	}

	return g
}

// AddAllowedPath adds a root under which all filesystem operations are
// permitted. Visible to subsequent validation calls.
func (g *Guard) AddAllowedPath(path string) {
	cleaned := g.normalizeCase(filepath.Clean(expandHome(path, g.homeDir)))
	g.mu.Lock()
	g.allowedPaths = append(g.allowedPaths, cleaned)
	g.mu.Unlock()

	g.logger.Debug("added allowed path", zap.String("path", cleaned))
}

// ProjectRoot returns the project root the guard was constructed with.
func (g *Guard) ProjectRoot() string {
	return g.projectRoot
}

func normalizePlatform(platform string) string {
	switch platform {
	case "darwin", "windows", "linux":
		return platform
	case "win32":
		return "windows"
	default:
		// Treat unrecognized unix-likes as linux so they still get a
		// rule table rather than none.
		return "linux"
	}
}

// normalizeCase lowercases paths on windows, where the filesystem is
// case-insensitive.
func (g *Guard) normalizeCase(path string) string {
	if g.platform == "windows" {
		return strings.ToLower(path)
	}
	return path
}

func expandHome(path, home string) string {
	if home == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	return home + path[1:]
}
