package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/semantest/replay/internal/automation"
)

// NewExportCmd creates the 'export' command: dump every automation to a
// JSON file (or stdout).
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all automations as JSON",
		Example: `  replay export -o automations.json
  replay export  # prints to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default stdout)")

	return cmd
}

func runExport(output string) error {
	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	list, err := mgr.ExportAutomations()
	if err != nil {
		return fmt.Errorf("failed to export automations: %w", err)
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal automations: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		fmt.Print(string(data))
		return nil
	}

	if err := os.WriteFile(output, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Exported %d automation(s) to %s\n", len(list), output)
	return nil
}

// NewImportCmd creates the 'import' command: upsert automations from a
// previously exported JSON file.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "import <file>",
		Short:   "Import automations from a JSON export",
		Args:    cobra.ExactArgs(1),
		Example: `  replay import automations.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0])
		},
	}

	return cmd
}

func runImport(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var list []*automation.StoredAutomation
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	if err := mgr.ImportAutomations(list); err != nil {
		return fmt.Errorf("failed to import automations: %w", err)
	}

	fmt.Printf("Imported %d automation(s) from %s\n", len(list), path)
	return nil
}
