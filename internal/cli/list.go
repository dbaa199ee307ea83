package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/wardroberec/internal/workflow"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

func newListCmd() *cobra.Command {
	var filter client.WardrobeFilter

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the clothes in your wardrobe",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := workflow.NewWardrobeView(apiClient.Clothes(), log)
			if filter.Occasion != "" || filter.Preferences != "" {
				view.SetFilter(&filter)
			}

			items, err := view.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			return renderWardrobe(cmd, items)
		},
	}

	cmd.Flags().StringVar(&filter.Occasion, "occasion", "", "only items for these occasions (comma separated)")
	cmd.Flags().StringVar(&filter.Preferences, "preferences", "", "only items matching these categories, colors or materials (comma separated)")

	return cmd
}

func renderWardrobe(cmd *cobra.Command, items []client.ClothingItem) error {
	out := cmd.OutOrStdout()
	if getOutputFormat() != "table" {
		return printOutput(out, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "Your wardrobe is empty")
		return nil
	}

	t := NewTable(out, "ID", "CATEGORY", "COLOR", "MATERIAL", "OCCASION", "IMAGE")
	for _, it := range items {
		t.AddRow(
			strconv.Itoa(it.ID),
			it.Category,
			it.Color,
			it.Material,
			it.Occasion,
			truncate(it.ImageURL, 48),
		)
	}
	t.Render()
	fmt.Fprintf(out, "\n%d item(s)\n", len(items))
	return nil
}
