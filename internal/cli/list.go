package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCmd creates the 'list' command for listing stored automations.
func NewListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all stored automations",
		Long:    `Display every automation in the store with its usage and confidence.`,
		Example: `  replay list
  replay ls --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runList displays all stored automations.
func runList(jsonOutput bool) error {
	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	list, err := mgr.GetAllAutomations()
	if err != nil {
		return fmt.Errorf("failed to list automations: %w", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal automations: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(list) == 0 {
		fmt.Println("No automations stored.")
		fmt.Println("Record one through the browser extension, or import an export file.")
		return nil
	}

	fmt.Printf("Stored automations (%d):\n\n", len(list))
	for _, a := range list {
		printAutomation(a)
		fmt.Println()
	}

	return nil
}
