// Command concore-demo runs a handful of seeded constraint-engine and
// temporal-network scenarios and prints the resulting bounds and violation
// state. It exists as an executable fixture, not part of the module's
// public API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plancore/concore/pkg/concore"
	"github.com/plancore/concore/pkg/metrics"
	"github.com/plancore/concore/pkg/temporal"
	"github.com/plancore/concore/pkg/tracelog"
)

func main() {
	root := &cobra.Command{
		Use:   "concore-demo",
		Short: "Run seeded constraint-engine/temporal-network scenarios",
	}
	root.AddCommand(
		precedesCmd(),
		inconsistencyCmd(),
		violationCmd(),
		relaxationCmd(),
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, _ := zap.NewDevelopment()
	return log
}

func precedesCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "precedes",
		Short: "s precedes e, then a temporalDistance(s,d,e) narrows all three",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)
			engine := concore.NewConstraintEngine(concore.DefaultEngineConfig())
			engine.AddListener(tracelog.NewCeLogger(log))
			reg := metrics.NewRegistry(prometheus.NewRegistry())
			engine.AddListener(reg.Listener())

			bridge := temporal.NewTemporalPropagator(engine)
			bridge.SetConsistencyCheckHook(reg.RecordConsistencyCheck)

			sDom, _ := concore.NewDomain("int", 0, 10)
			eDom, _ := concore.NewDomain("int", 0, 20)
			s, err := engine.CreateVariable("int", sDom, false, false, "s")
			if err != nil {
				return err
			}
			e, err := engine.CreateVariable("int", eDom, false, false, "e")
			if err != nil {
				return err
			}
			if _, err := bridge.CreatePrecedes(s, e); err != nil {
				return err
			}
			if err := engine.Propagate(context.Background()); err != nil {
				return err
			}
			printBounds(cmd, "after precedes", s, e)

			dDom, _ := concore.NewDomain("int", 5, 7)
			d, err := engine.CreateVariable("int", dDom, false, false, "d")
			if err != nil {
				return err
			}
			if _, err := bridge.CreateTemporalDistance(s, d, e); err != nil {
				return err
			}
			if err := engine.Propagate(context.Background()); err != nil {
				return err
			}
			printBounds(cmd, "after temporalDistance", s, d, e)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit zap trace logs")
	return cmd
}

func inconsistencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inconsistency",
		Short: "force a negative cycle, observe the nogood, then recover",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := concore.NewConstraintEngine(concore.DefaultEngineConfig())
			bridge := temporal.NewTemporalPropagator(engine)

			aDom, _ := concore.NewDomain("int", -1000, 1000)
			bDom, _ := concore.NewDomain("int", -1000, 1000)
			a, _ := engine.CreateVariable("int", aDom, false, false, "a")
			b, _ := engine.CreateVariable("int", bDom, false, false, "b")

			net := bridge.Network()
			wa, err := bridge.Timepoint(a)
			if err != nil {
				return err
			}
			we, err := bridge.Timepoint(b)
			if err != nil {
				return err
			}
			if _, err := net.AddTemporalConstraint(wa, we, 200, 1_000_000, true); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "after A-before-B(lb=200): consistent")

			bad, err := net.AddTemporalConstraint(wa, we, -1_000_000, 100, true)
			if err != nil {
				return err
			}
			ok, nogood := net.Propagate()
			fmt.Fprintf(cmd.OutOrStdout(), "after contradictory pair: consistent=%v nogood_size=%d\n", ok, len(nogood))

			net.RemoveTemporalConstraint(bad, true)
			ok, _ = net.Propagate()
			fmt.Fprintf(cmd.OutOrStdout(), "after removing last constraint: consistent=%v\n", ok)
			return nil
		},
	}
	return cmd
}

func violationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "violation",
		Short: "specify a value that empties a domain under allowViolations(1)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := concore.DefaultEngineConfig()
			cfg.AllowViolations = true
			cfg.ViolationBudget = 1
			engine := concore.NewConstraintEngine(cfg)

			xDom, _ := concore.NewDomain("int", 0, 10)
			yDom, _ := concore.NewDomain("int", 0, 10)
			x, _ := engine.CreateVariable("int", xDom, true, false, "x")
			y, _ := engine.CreateVariable("int", yDom, true, false, "y")
			if _, err := engine.CreateBuiltinConstraint("eq", x, y); err != nil {
				return err
			}
			if err := y.Specify(concore.NumValue(5)); err != nil {
				return err
			}
			if err := engine.Propagate(context.Background()); err != nil {
				return err
			}
			if err := x.Specify(concore.NumValue(9)); err != nil {
				return err
			}
			err := engine.Propagate(context.Background())
			fmt.Fprintf(cmd.OutOrStdout(), "propagate error=%v violations=%d\n", err, len(engine.Violations()))
			for _, c := range engine.Violations() {
				fmt.Fprintf(cmd.OutOrStdout(), "  violated: %s (%v)\n", c.Name(), c.Violation())
			}

			if err := x.Reset(); err != nil {
				return err
			}
			err = engine.Propagate(context.Background())
			fmt.Fprintf(cmd.OutOrStdout(), "after reset: error=%v violations=%d\n", err, len(engine.Violations()))
			return nil
		},
	}
	return cmd
}

func relaxationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relaxation",
		Short: "equality chain x1-x2-x3, restrict x1, then relax it back",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := concore.NewConstraintEngine(concore.DefaultEngineConfig())
			dom := func() concore.Domain { d, _ := concore.NewDomain("int", 0, 10); return d }
			x1, _ := engine.CreateVariable("int", dom(), false, false, "x1")
			x2, _ := engine.CreateVariable("int", dom(), false, false, "x2")
			x3, _ := engine.CreateVariable("int", dom(), false, false, "x3")
			if _, err := engine.CreateBuiltinConstraint("eq", x1, x2); err != nil {
				return err
			}
			if _, err := engine.CreateBuiltinConstraint("eq", x2, x3); err != nil {
				return err
			}
			singleton, _ := concore.NewDomain("int", 4, 4)
			if err := x1.RestrictBaseDomain(singleton); err != nil {
				return err
			}
			if err := engine.Propagate(context.Background()); err != nil {
				return err
			}
			printBounds(cmd, "after restriction", x1, x2, x3)

			if err := x1.Relax(); err != nil {
				return err
			}
			if err := engine.Propagate(context.Background()); err != nil {
				return err
			}
			printBounds(cmd, "after relax", x1, x2, x3)
			fmt.Fprintf(cmd.OutOrStdout(), "lastRelaxed: x1=%d x2=%d x3=%d\n", x1.LastRelaxed(), x2.LastRelaxed(), x3.LastRelaxed())
			return nil
		},
	}
	return cmd
}

func printBounds(cmd *cobra.Command, label string, vars ...*concore.Variable) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", label)
	for _, v := range vars {
		lo, hi, _ := concore.DomainBounds(v.Current())
		fmt.Fprintf(cmd.OutOrStdout(), "  %s = [%v, %v]\n", v.Name(), lo, hi)
	}
}
