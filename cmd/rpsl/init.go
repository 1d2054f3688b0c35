package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dn42/rpsl-registry"
	"github.com/spf13/cobra"
)

var (
	initNamespace string
	initForce     bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new registry root with a default config object",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}

		configPath := filepath.Join(path, ".rpsl", "config")
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists; use --force to overwrite", configPath)
		}

		cfg := rpsl.BuildConfig(path, initNamespace, "schema", "mntner", "DN42-MNT", "DN42",
			rpsl.DefaultPrimaryKeys(), rpsl.DefaultNetworkOwners())

		if err := os.MkdirAll(filepath.Join(path, ".rpsl"), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(configPath, []byte(cfg.Format()), 0o644); err != nil {
			return err
		}

		logger.Info("initialized registry", "path", path, "config", configPath)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initNamespace, "namespace", "dn42", "object type namespace")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}
