package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaleido-lang/kaleido/internal/compiler"
)

var inspectAST bool

// build: compile one source file to textual LLVM IR
var BuildCmd = &cobra.Command{
	Use:   "build [file.ks]",
	Short: "Compile a (.ks) source file into (.ll) LLVM IR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcPath := args[0]

		if inspectAST {
			out, err := compiler.InspectAST(srcPath)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}

		outFile, err := compiler.CompileAndWrite(srcPath, outDir)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	},
}

func init() {
	BuildCmd.Flags().BoolVar(&inspectAST, "inspect-ast", false, "print the syntax trees instead of compiling")
}
