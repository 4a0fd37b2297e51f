package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/export"
)

// chainCommand creates the "chain" command: a quick look at the required
// edge set for a pedal order, without touching a board or catalog.
func (c *CLI) chainCommand() *cobra.Command {
	var fourCable string
	var outSVG string

	cmd := &cobra.Command{
		Use:   "chain <pedal> [pedal...]",
		Short: "Show the required cable edges for a signal chain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := chain.New(args...)
			if err != nil {
				return err
			}
			if fourCable != "" {
				if err := ch.EnableFourCable(fourCable); err != nil {
					return err
				}
			}

			printChainOrder(ch.Order(), ch.FourCable(), ch.LoopBefore())
			for _, e := range ch.Edges() {
				printDetail("%s", e)
			}

			if outSVG != "" {
				svg, err := export.RenderChainSVG(cmd.Context(), ch)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outSVG, svg, 0644); err != nil {
					return err
				}
				printFile(outSVG)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fourCable, "four-cable", "", "enable four-cable method with the loop before this pedal")
	cmd.Flags().StringVar(&outSVG, "svg", "", "render the chain graph to this path")

	return cmd
}
