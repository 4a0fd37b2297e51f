package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/export"
)

// conflictsCommand creates the "conflicts" command. It re-checks an exported
// layout document, which is how layout files produced elsewhere (or edited
// by hand) get validated.
func (c *CLI) conflictsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <layout.json>",
		Short: "Check an exported layout document for violations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var doc export.Document
			if err := json.Unmarshal(data, &doc); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing layout document %s", args[0])
			}
			if doc.Board == nil {
				return errors.New(errors.ErrCodeInvalidInput, "layout document %s has no board", args[0])
			}

			conflicts := conflict.Detect(doc.Instances, doc.Layout, doc.Routes)
			printConflicts(conflicts)
			if len(conflicts) > 0 {
				cmd.SilenceErrors = true
				return errors.New(errors.ErrCodeInvalidInput, "%d conflicts found", len(conflicts))
			}
			return nil
		},
	}
}
