package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewShowCmd creates the 'show' command for inspecting one automation,
// including the scripts that list output omits.
func NewShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "show <id>",
		Short:   "Show one automation in full, including its scripts",
		Args:    cobra.ExactArgs(1),
		Example: `  replay show 6b1f6c0e-6c6e-4b7a-9a0f-2f8d3f1a9c2b --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runShow(id string, jsonOutput bool) error {
	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	a, err := mgr.GetAutomation(id)
	if err != nil {
		return fmt.Errorf("failed to load automation: %w", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal automation: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printAutomation(a)
	fmt.Printf("    Recorded:   %s (%d steps)\n", a.Metadata.RecordedAt.Format("2006-01-02 15:04:05"), a.Metadata.ActionsCount)
	if a.Matching.URLPattern != "" {
		fmt.Printf("    URL:        %s\n", a.Matching.URLPattern)
	}
	if len(a.Matching.ContextPatterns) > 0 {
		fmt.Printf("    Context:    %v\n", a.Matching.ContextPatterns)
	}
	fmt.Printf("\n  Script:\n    %s\n", a.Script)
	fmt.Printf("\n  Templated script:\n    %s\n", a.TemplatedScript)

	return nil
}
