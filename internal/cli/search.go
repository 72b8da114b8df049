package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/semantest/replay/internal/automation"
)

// NewSearchCmd creates the 'search' command. With --text it runs a
// full-text query through the index; otherwise it runs a criteria query
// against the store's matcher.
func NewSearchCmd() *cobra.Command {
	var (
		text          string
		action        string
		website       string
		eventType     string
		params        []string
		minConfidence float64
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search stored automations",
		Long: `Search automations either by free text (--text, served by the
full-text index) or by matching criteria (action, website, required
parameters, confidence floor, served by the store).`,
		Example: `  replay search --action search --website example.com
  replay search --action login --param username --param password
  replay search --text "github login"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text != "" {
				return runTextSearch(text, limit)
			}
			c := automation.SearchCriteria{
				EventType:  eventType,
				Action:     action,
				Website:    website,
				Parameters: params,
			}
			if cmd.Flags().Changed("min-confidence") {
				c.MinConfidence = &minConfidence
			}
			return runCriteriaSearch(c)
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Free-text query")
	cmd.Flags().StringVarP(&action, "action", "a", "", "Action name")
	cmd.Flags().StringVarP(&website, "website", "w", "", "Website/domain")
	cmd.Flags().StringVar(&eventType, "event-type", "", "Event type")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Required parameter name (repeatable)")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Confidence floor")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results for --text")

	return cmd
}

// runTextSearch queries the full-text index.
func runTextSearch(text string, limit int) error {
	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	results, err := mgr.SearchText(text, limit)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}

	printResults(results, fmt.Sprintf("text %q", text))
	return nil
}

// runCriteriaSearch queries through the store's matching pipeline.
func runCriteriaSearch(c automation.SearchCriteria) error {
	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	results, err := mgr.SearchAutomations(c)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}

	var parts []string
	if c.Action != "" {
		parts = append(parts, "action="+c.Action)
	}
	if c.Website != "" {
		parts = append(parts, "website="+c.Website)
	}
	if c.EventType != "" {
		parts = append(parts, "eventType="+c.EventType)
	}
	if len(c.Parameters) > 0 {
		parts = append(parts, "params="+strings.Join(c.Parameters, ","))
	}

	printResults(results, strings.Join(parts, " "))
	return nil
}

func printResults(results []*automation.StoredAutomation, what string) {
	if len(results) == 0 {
		fmt.Printf("No automations matched %s.\n", what)
		return
	}

	fmt.Printf("Found %d matching automation(s):\n\n", len(results))
	for _, a := range results {
		printAutomation(a)
		fmt.Println()
	}
}
