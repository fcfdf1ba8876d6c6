package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcp-guard/mcpguard-go/internal/audit"
	"github.com/mcp-guard/mcpguard-go/internal/config"
	"github.com/mcp-guard/mcpguard-go/internal/logs"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage the security configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective merged configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	})

	var initPath string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := config.DefaultConfig()
			if err := config.Save(cfg, initPath); err != nil {
				return err
			}
			if initPath == "" {
				initPath = "~/." + config.ConfigFileName
			}
			fmt.Printf("wrote default configuration to %s\n", initPath)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&initPath, "output", "o", "", "Destination path (default: home directory)")
	cmd.AddCommand(initCmd)

	return cmd
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded confirmation requests from the audit store",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Logging == nil || cfg.Logging.AuditPath == "" {
				return fmt.Errorf("no audit store configured (set logging.audit_path or %s)", config.EnvLogPath)
			}

			logger, err := logs.SetupCommandLogger(logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := audit.NewStore(cfg.Logging.AuditPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListConfirmations(limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			for _, r := range records {
				fmt.Printf("%s  %-8s  %-14s  %s\n",
					r.Timestamp.Format("2006-01-02 15:04:05"), r.Status, r.Type, r.Operation)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum records to list")
	return cmd
}
