package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List registered roles and their rank tiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROLE\tTITLE\tTIERS")
			for _, ev := range registry.Roles() {
				tiers := ""
				for i, t := range ev.Tiers() {
					if i > 0 {
						tiers += ", "
					}
					tiers += fmt.Sprintf("%s>=%d", t.Label, t.MinScore)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ev.RoleID(), ev.Title(), tiers)
			}
			return w.Flush()
		},
	}
}
