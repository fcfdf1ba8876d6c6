package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mcp-guard/mcpguard-go/internal/confirm"
)

// promptLoop consumes interactive confirmation requests and prompts the
// operator on the terminal. In a non-interactive session every request is
// denied immediately rather than left to time out.
func promptLoop(strategy *confirm.Interactive) {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	reader := bufio.NewReader(os.Stdin)

	for req := range strategy.Requests() {
		if !interactive {
			strategy.Resolve(req.ID, false)
			continue
		}

		fmt.Printf("⚠️  %s", req.Operation)
		if req.Details.Command != "" {
			fmt.Printf(": %s", req.Details.Command)
		}
		if req.Details.Path != "" {
			fmt.Printf(": %s", req.Details.Path)
		}
		fmt.Printf(" [risk: %s] Approve? [y/N]: ", req.Details.Risk)

		response, err := reader.ReadString('\n')
		if err != nil {
			strategy.Resolve(req.ID, false)
			continue
		}

		response = strings.ToLower(strings.TrimSpace(response))
		strategy.Resolve(req.ID, response == "y" || response == "yes")
	}
}
