package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/billbatista/acasinha-splitter/ledger"
	"github.com/billbatista/acasinha-splitter/render"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagYes bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the bill, transactions and final split",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprint(cmd.OutOrStdout(), render.View(a.engine.View()))
		return nil
	},
}

var billCmd = &cobra.Command{
	Use:   "bill <amount>",
	Short: "Set the bill amount",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, e *ledger.Engine, args []string) error {
		return e.SetBill(commandContext(cmd), args[0])
	}),
}

var payCmd = &cobra.Command{
	Use:   "pay <amount> <person>...",
	Short: "Record a payment shared by the given people",
	Args:  cobra.MinimumNArgs(2),
	RunE: withEngine(func(cmd *cobra.Command, e *ledger.Engine, args []string) error {
		return e.SubmitPayment(commandContext(cmd), args[0], args[1:])
	}),
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a person to the bill",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, e *ledger.Engine, args []string) error {
		return e.AddPerson(commandContext(cmd), args[0])
	}),
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a person and recalculate the split",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, e *ledger.Engine, args []string) error {
		confirm := confirmRemoval
		if flagYes {
			confirm = func(string) bool { return true }
		}
		removed, err := e.RemovePerson(commandContext(cmd), args[0], confirm)
		if err == nil && !removed {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s was not removed\n", args[0])
		}
		return err
	}),
}

var deleteTxCmd = &cobra.Command{
	Use:   "delete-tx <index>",
	Short: "Delete a transaction by its index",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, e *ledger.Engine, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		if !e.DeleteTransaction(commandContext(cmd), index) {
			fmt.Fprintf(cmd.ErrOrStderr(), "no transaction at index %d\n", index)
		}
		return nil
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the bill and start over",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(cmd *cobra.Command, e *ledger.Engine, _ []string) error {
		e.Reset(commandContext(cmd))
		return nil
	}),
}

func init() {
	removeCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(showCmd, billCmd, payCmd, addCmd, removeCmd, deleteTxCmd, resetCmd)
}

// withEngine opens the configured ledger, runs fn and prints the ledger
// after every change.
func withEngine(fn func(cmd *cobra.Command, e *ledger.Engine, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), ledger.WithRenderer(render.NewText(cmd.OutOrStdout())))
		if err != nil {
			return err
		}
		defer a.Close()
		return userError(fn(cmd, a.engine, args))
	}
}

func confirmRemoval(name string) bool {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Remove %q from this bill?", name)).
		Description("Their allocated share will be recalculated from the transactions.").
		Affirmative("Remove").
		Negative("Keep").
		Value(&ok).
		Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "confirmation aborted:", err)
		return false
	}
	return ok
}
