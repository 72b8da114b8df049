package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semantest/replay/internal/automation"
)

// NewDecideCmd creates the 'decide' command: run the reuse/record decision
// for a hypothetical request and show the outcome. Useful for inspecting
// what the engine would do without a browser attached.
func NewDecideCmd() *cobra.Command {
	var (
		website    string
		paramsJSON string
		ctxJSON    string
	)

	cmd := &cobra.Command{
		Use:   "decide <action>",
		Short: "Show the reuse/record decision for a request",
		Args:  cobra.ExactArgs(1),
		Example: `  replay decide search --website example.com --params '{"query":"cats"}'
  replay decide login --website github.com --params '{"username":"x","password":"y"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecide(args[0], website, paramsJSON, ctxJSON)
		},
	}

	cmd.Flags().StringVarP(&website, "website", "w", "", "Website the request targets")
	cmd.Flags().StringVar(&paramsJSON, "params", "{}", "Request parameters as JSON object")
	cmd.Flags().StringVar(&ctxJSON, "context", "", "Request context as JSON object")

	return cmd
}

func runDecide(action, website, paramsJSON, ctxJSON string) error {
	var params map[string]any
	if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
		return fmt.Errorf("failed to parse --params: %w", err)
	}

	var ctx map[string]any
	if ctxJSON != "" {
		if err := json.Unmarshal([]byte(ctxJSON), &ctx); err != nil {
			return fmt.Errorf("failed to parse --context: %w", err)
		}
	}

	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	decision, err := mgr.HandleRequest(automation.Request{
		Action:     action,
		Parameters: params,
		Context:    ctx,
		Website:    website,
	})
	if err != nil {
		return fmt.Errorf("failed to handle request: %w", err)
	}

	fmt.Printf("Decision: %s\n", decision.Action)
	fmt.Printf("Message:  %s\n", decision.Message)
	if decision.Automation != nil {
		fmt.Printf("Matches:  %d\n\n", decision.TotalMatches)
		printAutomation(decision.Automation)
	}

	return nil
}
