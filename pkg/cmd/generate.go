package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ssz-lang/sszc/pkg/compiler"
	"github.com/ssz-lang/sszc/pkg/config"
	"github.com/ssz-lang/sszc/pkg/diagnostics"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] entry-file...",
	Short: "generate Rust source from SSZ schema definition files.",
	Long:  "Generate deterministic, idiomatic Rust source for one or more SSZ schema entry files and their imports.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		var (
			baseDir      = GetString(cmd, "base-dir")
			registryPath = GetString(cmd, "crate-registry")
			crateFlags   = GetStringArray(cmd, "crate")
			output       = GetString(cmd, "output")
		)

		crates := map[string]string{}

		if registryPath != "" {
			reg, err := config.LoadCrateRegistry(registryPath)
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}

			crates = reg
		}

		crates, err := config.MergeCrateFlags(crates, crateFlags)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		driver := compiler.NewDriver()

		out, err := driver.Run(compiler.CompilationConfig{
			BaseDir: baseDir,
			Crates:  crates,
			Entries: args,
		})
		if err != nil {
			reportGenerateError(err)
			os.Exit(1)
		}

		if output == "" || output == "-" {
			fmt.Print(out)
			return
		}

		if err := os.WriteFile(output, []byte(out), 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

// reportGenerateError prints a compiler error to stderr, using the
// diagnostics package's source-span rendering when the error carries one.
func reportGenerateError(err error) {
	printer := diagnostics.NewPrinter(os.Stderr)

	if diagErr, ok := err.(*compiler.DiagnosticError); ok {
		printer.PrintAll(diagErr.Errs)
		return
	}

	fmt.Fprintln(os.Stderr, err)
}

func init() {
	generateCmd.Flags().String("base-dir", ".", "directory entry files and imports are resolved relative to")
	generateCmd.Flags().String("crate-registry", "", "YAML file mapping external crate name to root directory")
	generateCmd.Flags().StringArray("crate", []string{}, "mount an external crate as name=path, overriding the registry")
	generateCmd.Flags().StringP("output", "o", "", "write generated Rust source to this file (default: stdout)")
	generateCmd.Flags().BoolP("verbose", "v", false, "increase logging verbosity")
}
