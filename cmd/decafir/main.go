// Command decafir drives the semantic-analysis/IR-construction core over
// a built-in fixture program. It is a thin stand-in for the "CLI surface"
// this module does not otherwise own: there is no lexer/parser here, so
// it cannot read .decaf source files, only the fixture.quicksort program
// built directly as Go ast values.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"decafir/fixture"
	"decafir/ir"
	"decafir/ir/lir"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "decafir",
		Short: "Decaf semantic analysis and IR construction driver",
	}
	root.AddCommand(newDumpCmd())
	return root
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Build the quicksort fixture and print its LLIR listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd)
		},
	}
}

func runDump(cmd *cobra.Command) error {
	root, ds := ir.CreateIR(fixture.Quicksort())
	if len(ds) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), ds.Error())
		return fmt.Errorf("%d diagnostic(s)", len(ds))
	}

	mod := lir.Generate(root)
	fmt.Fprintln(cmd.OutOrStdout(), mod.String())
	return nil
}
