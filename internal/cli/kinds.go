package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cookgraph/internal/nodes"
	"github.com/matzehuels/cookgraph/pkg/network"
)

// kindsCommand creates the kinds command listing the node catalog.
func (c *CLI) kindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the node kinds scenarios may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(c.out, StyleTitle.Render("Node kinds"))
			for _, k := range nodes.All {
				printKeyValue(c.out, k.Name, k.Description)
				printDetail(c.out, "in: %s  out: %s", ports(k.Inputs), ports(k.Outputs))
				if len(k.Defaults) > 0 {
					printDetail(c.out, "settings: %s", defaults(k.Defaults))
				}
			}
			return nil
		},
	}
}

func ports(specs []network.PortSpec) string {
	if len(specs) == 0 {
		return "-"
	}
	parts := make([]string, len(specs))
	for i, p := range specs {
		parts[i] = fmt.Sprintf("%s:%s", p.Name, p.Type)
		if p.Multi {
			parts[i] += "[]"
		}
	}
	return strings.Join(parts, ", ")
}

func defaults(s network.Settings) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, s[k])
	}
	return strings.Join(parts, " ")
}
