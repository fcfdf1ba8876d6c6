// mcpguard is a CLI front end for the guardrail pipeline: it classifies
// commands and paths, validates tool input against schemas, and runs the
// confirmation workflow for operations that need a human decision.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcp-guard/mcpguard-go/internal/config"
)

var (
	configFile  string
	logLevel    string
	projectRoot string
	jsonOutput  bool

	version = "v0.1.0" // Injected by -ldflags during build
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mcpguard",
		Short:   "Tool-execution guardrails for agent frameworks",
		Long:    "mcpguard validates agent-requested shell commands, filesystem operations, and tool inputs against a layered security policy before they execute.",
		Version: version,
		// Verdict exit codes travel as errors; main prints nothing extra
		// for them, and the verdict itself was already printed.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Security config file path (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project-root", "", "Project root directory (default: working directory)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print verdicts as JSON")

	viper.SetEnvPrefix("MCPGUARD")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("project-root", rootCmd.PersistentFlags().Lookup("project-root"))

	rootCmd.AddCommand(checkCommandCmd())
	rootCmd.AddCommand(checkPathCmd())
	rootCmd.AddCommand(validateInputCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		var verdict exitCodeError
		if errors.As(err, &verdict) {
			os.Exit(verdict.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitCodeGeneralError)
	}
}

// loadConfig resolves the effective security config, honoring the --config
// flag and its MCPGUARD_CONFIG env fallback.
func loadConfig() (*config.SecurityConfig, error) {
	path := viper.GetString("config")
	if path != "" {
		return config.LoadFromFile(path, nil)
	}
	return config.Load(nil)
}

func resolveProjectRoot() string {
	if root := viper.GetString("project-root"); root != "" {
		return root
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
