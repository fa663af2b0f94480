package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/spritestage/sandbox"
)

// errProgramProblems marks a program that extracted or compiled with problems
var errProgramProblems = errors.New("program has problems")

var checkCmd = &cobra.Command{
	Use:   "check <program.js>",
	Short: "Report which phases a program defines",
	Long:  `Splits the program into its phases, compiles each one and reports what was found.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read program: %w", err)
		}
		return runCheck(cmd.OutOrStdout(), string(text))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// runCheck prints one line per phase kind, then every problem
func runCheck(w io.Writer, text string) error {
	x := sandbox.New(sandbox.Options{})
	problems := x.Compile(text)

	for _, kind := range []sandbox.PhaseKind{sandbox.PhaseInit, sandbox.PhaseFrame, sandbox.PhasePress} {
		if ph := x.Source().Phase(kind); ph != nil && x.HasPhase(kind) {
			fmt.Fprintf(w, "+ %-5s %s(%s)\n", kind, ph.Name, strings.Join(ph.Params, ", "))
			continue
		}
		fmt.Fprintf(w, "- %s\n", kind)
	}
	// Absent phases are already listed above and are not faults
	failed := 0
	for _, p := range problems {
		if errors.Is(p, sandbox.ErrPhaseMissing) {
			continue
		}
		failed++
		fmt.Fprintf(w, "problem: %v\n", p)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d", errProgramProblems, failed)
	}
	return nil
}
