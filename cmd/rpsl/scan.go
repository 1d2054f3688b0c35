package main

import (
	"fmt"
	"os"

	"github.com/dn42/rpsl-registry"
	"github.com/spf13/cobra"
)

var (
	scanDir    string
	scanFile   string
	scanAddIdx bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Validate registry objects against their schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(scanDir)
		if err != nil {
			return err
		}

		cfg, err := rpsl.LoadConfig(root)
		if err != nil {
			return err
		}

		store, err := rpsl.OpenStore(cfg)
		if err != nil {
			return err
		}
		if scanAddIdx {
			store = store.WithOverlay()
		}

		var targets []*rpsl.Object
		if scanFile != "" {
			obj, err := rpsl.ParseFile(scanFile, cfg.ParseContext())
			if err != nil {
				return err
			}
			targets = append(targets, obj)
			if scanAddIdx {
				if err := store.AppendIndex(obj); err != nil {
					return err
				}
			}
		} else {
			objs, err := rpsl.WalkRegistry(cfg)
			if err != nil {
				return err
			}
			targets = objs
		}

		state := store.ScanFiles(targets)
		for _, msg := range state.Messages() {
			fmt.Fprintln(os.Stderr, msg.String())
		}

		if !state.OK() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanDir, "scan-dir", "", "registry root to scan (default: discovered)")
	scanCmd.Flags().StringVar(&scanFile, "scan-file", "", "scan a single object file instead of the whole registry")
	scanCmd.Flags().BoolVar(&scanAddIdx, "add-index", false, "validate scan-file against an in-memory overlay index")
	rootCmd.AddCommand(scanCmd)
}
