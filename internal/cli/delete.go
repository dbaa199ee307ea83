package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/wardroberec/internal/workflow"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an item from your wardrobe",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			view := workflow.NewWardrobeView(apiClient.Clothes(), log)
			deleted, err := view.Delete(cmd.Context(), id)
			if !deleted {
				if err != nil {
					return err
				}
				return fmt.Errorf("server refused to delete item %d", id)
			}

			log.With("id", id).Info("item deleted")
			if err != nil {
				// the delete stands; only the refreshed listing is missing
				return fmt.Errorf("item %d deleted but the wardrobe could not be reloaded: %w", id, err)
			}

			out := cmd.OutOrStdout()
			if getOutputFormat() == "table" {
				fmt.Fprintf(out, "%s item %d\n\n", formatStatus(out, "deleted"), id)
			}
			return renderWardrobe(cmd, view.Items())
		},
	}
}
