// Package cmd implements the sszc command-line interface: a single
// "generate" subcommand that drives pkg/compiler end to end and writes
// the resulting Rust source to disk.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is filled in when building via `make`; empty otherwise, matching
// the teacher's convention of leaving version detection to the build.
var Version string

// rootCmd is the base command when sszc is invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "sszc",
	Short: "A compiler from SSZ schema definitions to Rust.",
	Long:  "sszc compiles SSZ schema definition files into deterministic, idiomatic Rust source.",
}

// Execute adds all child commands to the root command and runs it. Called
// once by cmd/sszc/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
