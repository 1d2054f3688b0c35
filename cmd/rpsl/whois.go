package main

import (
	"fmt"
	"net/netip"

	"github.com/dn42/rpsl-registry"
	"github.com/spf13/cobra"
)

var whoisDir string

var whoisCmd = &cobra.Command{
	Use:   "whois <text> [type]",
	Short: "Look up objects by name, optionally narrowed to a type",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(whoisDir)
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

		if looksLikeNetwork(args[0]) {
			node, route, err := store.FindNetwork(args[0])
			if err != nil {
				return err
			}
			if node == nil || node.Net == nil {
				return nil
			}
			fmt.Printf("%s/%d %s %s %s\n",
				node.Net.Network.Addr(), node.Net.Network.Bits(), node.Net.Policy, node.Net.Status, node.Net.ObjectType)
			if route != nil {
				fmt.Printf("%s/%d %s %s route\n",
					route.Network.Addr(), route.Network.Bits(), route.Policy, route.Status)
			}
			return nil
		}

		typ := ""
		if len(args) == 2 {
			typ = args[1]
		}

		results, err := store.Find(args[0], typ)
		if err != nil {
			return err
		}
		for i, obj := range results {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(obj.Format())
		}
		return nil
	},
}

func init() {
	whoisCmd.Flags().StringVar(&whoisDir, "dir", "", "registry root (default: discovered)")
	rootCmd.AddCommand(whoisCmd)
}

// looksLikeNetwork reports whether text parses as a bare IP address or
// CIDR, the signal the whois subcommand uses to route the query through
// the network tree instead of the name index.
func looksLikeNetwork(text string) bool {
	if _, err := netip.ParseAddr(text); err == nil {
		return true
	}
	_, err := netip.ParsePrefix(text)
	return err == nil
}
