package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/studiowebux/gemcli/internal/keybinds"
)

// ListKeys prints the effective key bindings of every context.
func ListKeys(w io.Writer, registry *keybinds.Registry) error {
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "CONTEXT\tKEY\tACTION")

	for _, ctx := range registry.Contexts() {
		for _, b := range registry.ListBindings(ctx) {
			// global bindings are listed once, under their own context
			if b.Context != ctx {
				continue
			}
			fmt.Fprintf(writer, "%s\t%s\t%s\n", b.Context, b.Key, b.Action)
		}
	}

	return writer.Flush()
}
