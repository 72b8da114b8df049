package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the 'remove' command for deleting one automation.
func NewRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored automation by id",
		Args:    cobra.ExactArgs(1),
		Example: `  replay remove 6b1f6c0e-6c6e-4b7a-9a0f-2f8d3f1a9c2b`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args[0])
		},
	}

	return cmd
}

func runRemove(id string) error {
	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	if err := mgr.DeleteAutomation(id); err != nil {
		return fmt.Errorf("failed to remove automation: %w", err)
	}

	fmt.Printf("Removed %s\n", id)
	return nil
}

// NewClearCmd creates the 'clear' command for wiping the store.
func NewClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored automation",
		Example: `  replay clear
  replay clear --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	return cmd
}

func runClear(force bool) error {
	if !force {
		fmt.Print("This deletes every stored automation. Continue? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	mgr, closeAll, err := openManager()
	if err != nil {
		return err
	}
	defer closeAll()

	if err := mgr.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear automations: %w", err)
	}

	fmt.Println("Store cleared.")
	return nil
}
