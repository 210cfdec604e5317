package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceExt is the required extension for source files.
const SourceExt = ".ks"

// CompileAndWrite compiles the source file at srcPath into textual LLVM IR
// and writes it under outDir as <name>.ll, returning the output path.
func CompileAndWrite(srcPath, outDir string) (string, error) {
	if err := validateExtension(srcPath); err != nil {
		return "", err
	}

	content, err := readSource(srcPath)
	if err != nil {
		return "", err
	}

	sess := NewSession()
	if err := sess.CompileSource(content); err != nil {
		return "", fmt.Errorf("%s: %w", srcPath, err)
	}

	return writeOutput(sess.IR(), srcPath, outDir)
}

// InspectAST parses the source file at srcPath and returns its syntax trees
// rendered one unit per line, without lowering anything.
func InspectAST(srcPath string) (string, error) {
	if err := validateExtension(srcPath); err != nil {
		return "", err
	}

	content, err := readSource(srcPath)
	if err != nil {
		return "", err
	}

	out, err := NewSession().DumpAST(content)
	if err != nil {
		return "", fmt.Errorf("%s: %w", srcPath, err)
	}
	return out, nil
}

func validateExtension(path string) error {
	if filepath.Ext(path) != SourceExt {
		return fmt.Errorf("source must have %s extension", SourceExt)
	}
	return nil
}

func readSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func writeOutput(ir, srcPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	outFile := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(srcPath), SourceExt)+".ll")
	return outFile, os.WriteFile(outFile, []byte(ir), 0o644)
}
