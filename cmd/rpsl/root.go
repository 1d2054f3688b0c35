// Package main implements the rpsl command-line tool: a thin collaborator
// over the rpsl package that discovers a registry root, then dispatches to
// the index, scan, whois, and init subcommands.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

var rootCmd = &cobra.Command{
	Use:   "rpsl",
	Short: "Validate and query a dn42-style RPSL registry",
	Long: `rpsl is a small toolkit for RPSL-style Internet-number registries:
it indexes object files into fast lookup sidecars, validates them
against schema objects, and answers WHOIS-style queries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// findRegistryRoot searches from, then its ancestors, for a ".rpsl"
// sidecar directory, the way the CLI resolves RPSL_DIR when unset.
func findRegistryRoot(from string) (string, error) {
	dir, err := filepath.Abs(from)
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".rpsl")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no .rpsl directory found in %q or its ancestors", from)
		}
		dir = parent
	}
}

func resolveRoot(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if env := os.Getenv("RPSL_DIR"); env != "" {
		return env, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findRegistryRoot(cwd)
}
