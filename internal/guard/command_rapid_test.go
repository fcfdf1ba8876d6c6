package guard

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/mcp-guard/mcpguard-go/internal/config"
)

// Whatever the input, a command is either blocked outright or allowed with
// low risk from the safe allowlist. Anything else must carry the
// confirmation requirement; there is no silent bare allow for unknowns.
func TestValidateCommand_NeverSilentlyApprovesUnknown(t *testing.T) {
	g := NewForPlatform("linux", config.DefaultConfig(), t.TempDir(), nil)

	rapid.Check(t, func(t *rapid.T) {
		base := rapid.StringMatching(`[a-z][a-z0-9_-]{0,15}`).Draw(t, "base")
		arg := rapid.StringMatching(`[a-zA-Z0-9./ _-]{0,30}`).Draw(t, "arg")

		result := g.ValidateCommand(base+" "+arg, Context{AgentID: "prop"})

		if result.Allowed && !result.RequiresConfirmation {
			if !safeCommands[base] {
				t.Fatalf("command %q %q allowed without confirmation but base is not in the safe allowlist", base, arg)
			}
		}
		if !result.Allowed && result.RequiresConfirmation {
			t.Fatalf("command %q %q is blocked yet offers confirmation", base, arg)
		}
	})
}
