package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eduwrench/simclient/sim"
	"github.com/eduwrench/simclient/sim/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios [name]",
	Short: "List available scenarios, or show one scenario's parameters",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := loadCatalog()
		if err != nil {
			logrus.Fatalf("Failed to load scenarios: %v", err)
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, name := range cat.Names() {
				s, _ := cat.Lookup(name)
				fmt.Fprintf(out, "%-22s %s\n", s.Name, s.Title)
			}
			return
		}
		s, ok := cat.Lookup(args[0])
		if !ok {
			logrus.Fatalf("Unknown scenario %q (known: %s)", args[0], strings.Join(cat.Names(), ", "))
		}
		writeParameters(out, s)
	},
}

// writeParameters lists a scenario's parameters with their constraints and defaults.
func writeParameters(w io.Writer, s scenario.Scenario) {
	fmt.Fprintf(w, "%s (POST %s)\n", s.Name, s.Path)
	for _, d := range s.Parameters {
		fmt.Fprintf(w, "  %-20s %-8s %-24s default %q\n", d.Name, d.Kind, constraint(d), d.Default)
	}
}

func constraint(d sim.ParameterDescriptor) string {
	switch d.Kind {
	case sim.KindEnum:
		return strings.Join(d.Choices, "|")
	case sim.KindInteger:
		lo, hi := "-", "-"
		if d.Min != nil {
			lo = fmt.Sprint(*d.Min)
		}
		if d.Max != nil {
			hi = fmt.Sprint(*d.Max)
		}
		return fmt.Sprintf("[%s, %s]", lo, hi)
	default:
		return "true|false"
	}
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}
