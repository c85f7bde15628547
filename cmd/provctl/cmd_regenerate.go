package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"provenance-backend/application/commands"
	"provenance-backend/application/queries"
	"provenance-backend/application/services"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/infrastructure/di"
	"provenance-backend/interfaces/http/rest/handlers"
)

func (c *cli) regenerateCmd() *cobra.Command {
	var keyword string
	var ccirID int64

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild every bullet point from raw facts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			regen := commands.RegenerateSummariesCommand{Keyword: keyword}
			if cmd.Flags().Changed("ccir-id") {
				regen.CCIRID = &ccirID
			}
			return c.withContainer(cmd.Context(), func(container *di.Container) error {
				result, err := container.CommandBus.Send(cmd.Context(), regen)
				if err != nil {
					return err
				}
				return c.printJSON(queries.NewRegenerationView(result.(*services.RegenerationResult)))
			})
		},
	}
	cmd.Flags().StringVar(&keyword, "ccir", "", "keep only raw facts containing this keyword")
	cmd.Flags().Int64Var(&ccirID, "ccir-id", 0, "keep only raw facts matching the keywords of this CCIR")
	cmd.MarkFlagsMutuallyExclusive("ccir", "ccir-id")
	return cmd
}

func (c *cli) invalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <bullet-point-id>",
		Short: "Invalidate a bullet point and everything derived from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid bullet point id %q", args[0])
			}
			return c.withContainer(cmd.Context(), func(container *di.Container) error {
				result, err := container.CommandBus.Send(cmd.Context(), commands.InvalidateBulletPointCommand{BulletPointID: id})
				if err != nil {
					return err
				}
				return c.printJSON(handlers.InvalidateResponse{InvalidatedIDs: bulletIDs(result.([]valueobjects.BulletPointID))})
			})
		},
	}
}

func bulletIDs(ids []valueobjects.BulletPointID) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}
