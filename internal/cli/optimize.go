package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/catalog"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/engine"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/export"
)

// optimizeFlags holds the optimize command's flag values.
type optimizeFlags struct {
	catalogPath string
	boardID     string
	ampID       string
	pedals      []string
	fourCable   string
	outSVG      string
	outJSON     string
	outDOT      string
	seed        uint64
	orderWeight float64
	rotate      bool
	noCache     bool
	refresh     bool
	interactive bool
}

// optimizeCommand creates the "optimize" command.
func (c *CLI) optimizeCommand() *cobra.Command {
	var flags optimizeFlags

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Place and route a pedalboard",
		Long: `Optimize loads gear from a catalog fixture, places the pedals on the board
without overlaps, routes a cable for every signal-chain edge, and reports any
conflicts. Pedals are given as repeated --pedal instance=pedal-id flags; their
order is the signal-chain order.`,
		Example: `  pedalstack optimize --catalog rig.json --board pt-2 \
      --pedal od=ts808 --pedal dly=dd7 --amp twin --svg board.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOptimize(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.catalogPath, "catalog", "", "catalog fixture file (required)")
	cmd.Flags().StringVar(&flags.boardID, "board", "", "board id in the catalog (required)")
	cmd.Flags().StringVar(&flags.ampID, "amp", "", "amp id in the catalog")
	cmd.Flags().StringArrayVar(&flags.pedals, "pedal", nil, "pedal as instance=pedal-id, in chain order (repeatable)")
	cmd.Flags().StringVar(&flags.fourCable, "four-cable", "", "enable four-cable method with the loop before this instance")
	cmd.Flags().StringVar(&flags.outSVG, "svg", "", "write an SVG rendering to this path")
	cmd.Flags().StringVar(&flags.outJSON, "json", "", "write the layout document to this path")
	cmd.Flags().StringVar(&flags.outDOT, "dot", "", "write the signal-chain DOT to this path")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "placement search seed (0 = default)")
	cmd.Flags().Float64Var(&flags.orderWeight, "order-weight", 0, "chain-order penalty weight (0 = config default)")
	cmd.Flags().BoolVar(&flags.rotate, "rotate", false, "allow 90-degree pedal rotation")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "pick pedals from the catalog interactively")

	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("board")

	return cmd
}

func (c *CLI) runOptimize(cmd *cobra.Command, flags optimizeFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if flags.orderWeight > 0 {
		cfg.Engine.OrderWeight = flags.orderWeight
	}
	if flags.rotate {
		cfg.Engine.AllowRotate = true
	}

	store, err := catalog.LoadFile(flags.catalogPath)
	if err != nil {
		return err
	}

	if flags.interactive {
		records, err := store.ListPedals(ctx)
		if err != nil {
			return err
		}
		picked, err := pickChain(records)
		if err != nil {
			return err
		}
		if len(picked) == 0 {
			printDetail("No pedals selected")
			return nil
		}
		flags.pedals = flags.pedals[:0]
		for _, id := range picked {
			flags.pedals = append(flags.pedals, id+"="+id)
		}
	}
	if len(flags.pedals) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one --pedal is required")
	}

	p, ch, err := buildProblem(cmd, store, flags)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	opts := engine.Options{
		Place:      cfg.PlaceOptions(),
		Route:      cfg.RouteOptions(),
		MaxRetries: cfg.Engine.MaxRetries,
		Refresh:    flags.refresh,
		Logger:     logger,
	}
	if flags.seed != 0 {
		opts.Place.Seed = flags.seed
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Optimizing %d pedals...", len(p.Instances)))
	spinner.Start()
	prog := newProgress(logger)
	result, err := runner.Execute(ctx, p, opts)
	if err != nil {
		spinner.StopWithError("Optimize failed")
		if perr, ok := errors.AsPlacementError(err); ok {
			printDetail("cannot place: %s", strings.Join(perr.Instances, ", "))
		}
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Optimized %d pedals", len(p.Instances)))

	for _, id := range ch.Order() {
		if pl, ok := result.Layout[id]; ok {
			logger.Debug(formatPlacement(id, pl))
		}
	}

	printResultSummary(result, ch.Order())
	printChainOrder(ch.Order(), ch.FourCable(), ch.LoopBefore())

	return writeArtifacts(p, ch, result, flags)
}

// buildProblem loads catalog records and assembles the engine input.
func buildProblem(cmd *cobra.Command, store catalog.Store, flags optimizeFlags) (engine.Problem, *chain.Chain, error) {
	ctx := cmd.Context()

	boardRec, err := store.Board(ctx, flags.boardID)
	if err != nil {
		return engine.Problem{}, nil, err
	}
	b, err := boardRec.Board()
	if err != nil {
		return engine.Problem{}, nil, err
	}

	var amp *board.Amp
	if flags.ampID != "" {
		ampRec, err := store.Amp(ctx, flags.ampID)
		if err != nil {
			return engine.Problem{}, nil, err
		}
		if amp, err = ampRec.Amp(); err != nil {
			return engine.Problem{}, nil, err
		}
	}

	instances := make([]*board.PedalInstance, 0, len(flags.pedals))
	order := make([]string, 0, len(flags.pedals))
	for _, spec := range flags.pedals {
		instanceID, pedalID, ok := strings.Cut(spec, "=")
		if !ok {
			return engine.Problem{}, nil, errors.New(errors.ErrCodeInvalidInput,
				"--pedal must be instance=pedal-id, got %q", spec)
		}
		rec, err := store.Pedal(ctx, pedalID)
		if err != nil {
			return engine.Problem{}, nil, err
		}
		fp, err := rec.Footprint()
		if err != nil {
			return engine.Problem{}, nil, err
		}
		instances = append(instances, &board.PedalInstance{ID: instanceID, Footprint: fp})
		order = append(order, instanceID)
	}

	ch, err := chain.New(order...)
	if err != nil {
		return engine.Problem{}, nil, err
	}
	if flags.fourCable != "" {
		if amp == nil || !amp.HasLoop {
			return engine.Problem{}, nil, errors.New(errors.ErrCodeInvalidChain,
				"--four-cable requires an amp with an effects loop")
		}
		if err := ch.EnableFourCable(flags.fourCable); err != nil {
			return engine.Problem{}, nil, err
		}
	}

	return engine.Problem{
		Board:     b,
		Amp:       amp,
		Instances: instances,
		Chain:     ch,
	}, ch, nil
}

// writeArtifacts writes the requested export files.
func writeArtifacts(p engine.Problem, ch *chain.Chain, result *engine.Result, flags optimizeFlags) error {
	if flags.outSVG != "" {
		svg := export.RenderSVG(p.Board, p.Instances, result.Layout,
			export.WithRoutes(result.Routes),
			export.WithConflicts(result.Conflicts),
			export.WithLabels())
		if err := os.WriteFile(flags.outSVG, svg, 0644); err != nil {
			return err
		}
		printFile(flags.outSVG)
	}
	if flags.outJSON != "" {
		doc, err := export.RenderJSON(export.Document{
			Board:     p.Board,
			Amp:       p.Amp,
			Instances: p.Instances,
			Layout:    result.Layout,
			Routes:    result.Routes,
			Conflicts: result.Conflicts,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(flags.outJSON, doc, 0644); err != nil {
			return err
		}
		printFile(flags.outJSON)
	}
	if flags.outDOT != "" {
		if err := os.WriteFile(flags.outDOT, []byte(export.ChainDOT(ch)), 0644); err != nil {
			return err
		}
		printFile(flags.outDOT)
	}
	return nil
}
