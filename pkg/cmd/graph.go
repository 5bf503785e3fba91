package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"InspectorCharts/pkg/config"
	"InspectorCharts/pkg/graphing"
	"InspectorCharts/pkg/metrics"

	"github.com/spf13/cobra"
)

// NewGraphCmd returns the graph subcommand.
func NewGraphCmd() *cobra.Command {
	cfg := config.New()
	var output string
	var all, png bool

	cmd := &cobra.Command{
		Use:     "graph [flags] <input-file>",
		Aliases: []string{"g"},
		Short:   "Generate chart pages from a recorded archive",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(cmd); err != nil {
				return err
			}
			labels, err := cfg.LabelFormat()
			if err != nil {
				return err
			}

			inputFile := args[0]
			if _, err := os.Stat(inputFile); err != nil {
				return fmt.Errorf("input file not found: %s", inputFile)
			}

			specs := []graphing.ChartSpec{cfg.Spec()}
			if all {
				specs = graphing.Specs()
				if strings.HasSuffix(output, ".html") || strings.HasSuffix(output, ".png") {
					return fmt.Errorf("--all needs an output directory, got %s", output)
				}
			}

			format := graphing.FormatHTML
			if png {
				format = graphing.FormatPNG
			}

			log.Printf("Generating graphs from %s", inputFile)
			return Graph(inputFile, output, specs, labels, format)
		},
	}

	cfg.AddConfigFlag(cmd)
	cfg.AddChartFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .html/.png file or directory (default: next to the input)")
	cmd.Flags().BoolVar(&png, "png", false, "Write static PNG images instead of interactive pages")
	cmd.Flags().BoolVar(&all, "all", false, "Generate a page for every chart")
	return cmd
}

// Graph renders one page per spec from the archive at inputPath. Charts
// whose metric was not recorded are skipped when more than one is asked for.
func Graph(inputPath, output string, specs []graphing.ChartSpec, labels graphing.LabelFormat, format string) error {
	generated := 0
	for _, spec := range specs {
		err := graphing.GenerateGraphFromFile(inputPath, output, spec, labels, format)
		if err != nil {
			if len(specs) > 1 && errors.Is(err, graphing.ErrMetricMissing) {
				log.Printf("Skipping %s: not recorded", spec.Key)
				continue
			}
			return fmt.Errorf("failed to generate %s graph: %w", spec.Key, err)
		}
		metrics.ObserveRender(spec.Key, format)
		generated++
	}

	if generated == 0 {
		return fmt.Errorf("no charts generated from %s", inputPath)
	}
	log.Printf("Successfully generated %d graph(s)", generated)
	return nil
}
