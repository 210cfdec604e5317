package cmd

import (
	"github.com/spf13/cobra"
)

var outDir string

var rootCmd = &cobra.Command{
	Use:   "kaleido",
	Short: "Kaleido CLI — Kaleidoscope compiler frontend",
	Long: `Kaleido compiles Kaleidoscope source into LLVM IR.

Commands:
  build  Compile a (.ks) source file into (.ll) LLVM IR
  repl   Start an interactive session that prints IR per line
`,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out", "output directory for build artifacts")

	rootCmd.AddCommand(BuildCmd, ReplCmd)
}
