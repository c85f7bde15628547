package main

import (
	"github.com/spf13/cobra"

	"provenance-backend/application/queries"
	"provenance-backend/infrastructure/di"
)

func (c *cli) hierarchyCmd() *cobra.Command {
	var unitID int64
	var includeSubunits bool

	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the provenance forest as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := queries.GetHierarchyQuery{IncludeSubunits: includeSubunits}
			if cmd.Flags().Changed("unit") {
				q.UnitID = &unitID
			}
			return c.withContainer(cmd.Context(), func(container *di.Container) error {
				result, err := container.QueryBus.Ask(cmd.Context(), q)
				if err != nil {
					return err
				}
				return c.printJSON(result)
			})
		},
	}
	cmd.Flags().Int64Var(&unitID, "unit", 0, "scope the forest to one unit")
	cmd.Flags().BoolVar(&includeSubunits, "include-subunits", false, "with --unit, include bullet points of subordinate units")
	return cmd
}
