package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the 'stats' command: a summary of the store's usage
// and confidence distribution.
func NewStatsCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage and confidence statistics for the store",
		Example: `  replay stats
  replay stats --top 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(top)
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "How many most-used automations to list")

	return cmd
}

func runStats(top int) error {
	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	list, err := mgr.GetAllAutomations()
	if err != nil {
		return fmt.Errorf("failed to load automations: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No automations stored.")
		return nil
	}

	totalUses := 0
	confidenceSum := 0.0
	websites := make(map[string]int)
	for _, a := range list {
		totalUses += a.Metadata.UseCount
		confidenceSum += a.Metadata.Confidence
		websites[a.Website]++
	}

	fmt.Printf("Automations:    %d (across %d websites)\n", len(list), len(websites))
	fmt.Printf("Total reuses:   %d\n", totalUses)
	fmt.Printf("Avg confidence: %.2f\n\n", confidenceSum/float64(len(list)))

	sort.Slice(list, func(i, j int) bool {
		return list[i].Metadata.UseCount > list[j].Metadata.UseCount
	})
	if top > len(list) {
		top = len(list)
	}

	fmt.Printf("Most used (%d):\n", top)
	for _, a := range list[:top] {
		fmt.Printf("  %4d uses  %.2f  %s @ %s\n",
			a.Metadata.UseCount, a.Metadata.Confidence, a.Action, a.Website)
	}

	return nil
}
