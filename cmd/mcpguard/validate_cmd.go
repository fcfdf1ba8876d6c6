package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcp-guard/mcpguard-go/internal/toolschema"
)

func validateInputCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-input <tool.json> <input.json>",
		Short: "Validate tool input against a tool's parameter schema",
		Long: `Validate a JSON input object against a tool definition. The tool file
holds {name, description, parameters[]}; the input file holds the
argument object. Loosely-typed values ("true", "3") are coerced toward
the declared types before validation.`,
		Args: cobra.ExactArgs(2),
		RunE: runValidateInput,
	}
}

func runValidateInput(cmd *cobra.Command, args []string) error {
	toolData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read tool definition: %w", err)
	}
	var tool toolschema.Tool
	if err := json.Unmarshal(toolData, &tool); err != nil {
		return fmt.Errorf("failed to parse tool definition: %w", err)
	}

	inputData, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	var input map[string]any
	if err := json.Unmarshal(inputData, &input); err != nil {
		return fmt.Errorf("failed to parse input: %w", err)
	}

	result := toolschema.Validate(tool.Schema(), input)

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else if result.Valid {
		fmt.Println("valid")
	} else {
		for _, detail := range result.ErrorDetails {
			fmt.Printf("%s: %s\n", detail.Path, detail.Message)
		}
	}

	if !result.Valid {
		return exitWithCode(ExitCodeInvalidInput)
	}
	return nil
}
