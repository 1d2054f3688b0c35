package main

import (
	"github.com/dn42/rpsl-registry"
	"github.com/spf13/cobra"
)

var indexDir string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the index/links/nettree/schema sidecars",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(indexDir)
		if err != nil {
			return err
		}

		cfg, err := rpsl.LoadConfig(root)
		if err != nil {
			return err
		}

		objs, changed, err := rpsl.WalkRegistryIncremental(cfg, logger)
		if err != nil {
			return err
		}
		logger.Info("files changed since last index", "count", changed)

		res := rpsl.BuildIndex(objs, cfg, logger)
		return rpsl.WriteSidecars(cfg, res, logger)
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexDir, "dir", "", "registry root (default: $RPSL_DIR or discovered .rpsl ancestor)")
	rootCmd.AddCommand(indexCmd)
}
