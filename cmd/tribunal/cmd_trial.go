package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tribunal/internal/trial"
	"tribunal/internal/types"
)

// trialCmd runs a full trial headlessly, streaming the transcript to
// stdout. Ctrl-C aborts the run cooperatively.
var trialCmd = &cobra.Command{
	Use:   "trial [case-id]",
	Short: "Run the scripted trial for a case, printing the transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := new(big.Int).SetString(args[0], 10)
		if !ok {
			return fmt.Errorf("invalid case id: %s", args[0])
		}

		a, err := newApp(workspace)
		if err != nil {
			return err
		}
		defer a.Close()
		a.sctx.SelectedCase = id

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		abortDone := make(chan struct{})
		go func() {
			defer close(abortDone)
			select {
			case <-sigCh:
				a.scheduler.Abort()
			case <-cmd.Context().Done():
			}
		}()

		sink := func(e trial.Event) {
			printEvent(e)
			if serr := a.store.AppendTrialEvent(context.Background(), id.String(),
				string(e.Kind), e.Turn, string(e.Role), string(e.Phase), e.Text); serr != nil {
				fmt.Fprintf(os.Stderr, "warning: transcript not persisted: %v\n", serr)
			}
		}

		v, _, err := a.scheduler.RunTrial(cmd.Context(), sink)
		signal.Stop(sigCh)
		close(sigCh)
		<-abortDone
		if err != nil {
			return err
		}
		if v != types.VerdictNone {
			fmt.Printf("\nFinal verdict: %s\n", v)
		}
		return nil
	},
}

func printEvent(e trial.Event) {
	switch e.Kind {
	case trial.EventTurn:
		fmt.Printf("\n[Turn %d | %s | %s]\n%s\n", e.Turn+1, e.Role, e.Phase, e.Text)
	case trial.EventVerdict:
		fmt.Printf("\n=== %s ===\n", e.Text)
	case trial.EventAborted:
		fmt.Printf("\n-- %s --\n", e.Text)
	case trial.EventError:
		fmt.Fprintf(os.Stderr, "\n%s\n", e.Text)
	default:
		fmt.Printf("\n%s\n", e.Text)
	}
}
