package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/wardroberec/internal/catalog"
)

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options [field]",
		Short: "List the accepted category, color, material and occasion values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := catalog.Fields
			if len(args) == 1 {
				field := catalog.Field(strings.ToLower(args[0]))
				if len(catalog.Options(field)) == 0 {
					return fmt.Errorf("unknown field %q", args[0])
				}
				fields = []catalog.Field{field}
			}

			out := cmd.OutOrStdout()
			if getOutputFormat() != "table" {
				data := make(map[string][]string, len(fields))
				for _, f := range fields {
					data[string(f)] = catalog.Options(f)
				}
				return printOutput(out, data)
			}

			t := NewTable(out, "FIELD", "VALUES")
			for _, f := range fields {
				t.AddRow(string(f), strings.Join(catalog.Options(f), ", "))
			}
			t.Render()
			return nil
		},
	}
}
