package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/kaleido-lang/kaleido/internal/compiler"
)

const historyFile = ".kaleido_history"

var replShowAST bool

// repl: interactive session printing the IR of each entered unit
var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session that prints IR per line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl()
	},
}

func runRepl() error {
	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		rl.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			rl.WriteHistory(f)
			f.Close()
		}
	}()

	sess := compiler.NewSession()
	fmt.Println("kaleido repl — enter expressions, definitions, or externs; Ctrl-D exits")

	for {
		input, err := rl.Prompt("ready> ")
		if err != nil {
			// Ctrl-C aborts the line, Ctrl-D ends the session.
			if err == liner.ErrPromptAborted {
				continue
			}
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		rl.AppendHistory(input)

		if replShowAST {
			if trees, err := sess.DumpAST(input); err == nil {
				fmt.Print(trees)
			}
		}

		rendered, err := sess.EvalLine(input)
		// Units lowered before the failure are still worth showing.
		for _, ir := range rendered {
			fmt.Println(ir)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func init() {
	ReplCmd.Flags().BoolVar(&replShowAST, "inspect-ast", false, "print the syntax tree of each line before its IR")
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}
