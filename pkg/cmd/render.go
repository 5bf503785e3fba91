package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"InspectorCharts/pkg/config"
	"InspectorCharts/pkg/fetching"
	"InspectorCharts/pkg/graphing"
	"InspectorCharts/pkg/metrics"

	"github.com/spf13/cobra"
)

// NewRenderCmd returns the render subcommand.
func NewRenderCmd() *cobra.Command {
	cfg := config.New()
	var from, to string

	cmd := &cobra.Command{
		Use:     "render",
		Aliases: []string{"r"},
		Short:   "Fetch one range and write the chart as an HTML page",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := InitCmd(cmd, cfg)
			if err != nil {
				return err
			}
			start, end, err := timeRange(from, to, cfg.Window, time.Now())
			if err != nil {
				return err
			}
			path, err := Render(cmd.Context(), cc, start, end)
			if err != nil {
				return err
			}
			log.Printf("Chart written to %s", path)
			return nil
		},
	}

	cfg.AddConfigFlag(cmd)
	cfg.AddBackendFlags(cmd)
	cfg.AddChartFlags(cmd)
	cfg.AddOutputFlags(cmd)
	cmd.Flags().DurationVar(&cfg.Window, "window", cfg.Window, "Range ending at --to when --from is not set")
	cmd.Flags().StringVar(&from, "from", "", "Range start (epoch ms or RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "Range end (epoch ms or RFC3339, default now)")
	return cmd
}

// Render fetches [from, to) for the configured agent and writes the chart
// page, returning its path.
func Render(ctx context.Context, cc *CmdContext, from, to time.Time) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	query := fetching.Query{AgentID: cc.Config.AgentID, From: from, To: to}
	if err := query.Validate(); err != nil {
		return "", err
	}

	payload, err := cc.Fetcher.Fetch(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to fetch chart data: %w", err)
	}

	chart, err := BuildChart(payload, cc.Spec, cc.Labels, nil)
	if err != nil {
		return "", err
	}

	path := renderOutputPath(cc.Config, cc.Spec.Key)
	page := graphing.PageData{
		Chart: cc.Spec.Key,
		Agent: query.AgentID,
		From:  cc.Labels.Time(from.UnixMilli()),
		To:    cc.Labels.Time(to.UnixMilli()),
	}
	r := &graphing.Renderer{}
	err = graphing.WriteFile(path, func(w io.Writer) error {
		return r.Render(w, page, chart.Option, chart.Normal)
	})
	if err != nil {
		return "", err
	}

	metrics.ObserveRender(cc.Spec.Key, "file")
	return path, nil
}

func renderOutputPath(cfg *config.Config, chart string) string {
	if cfg.OutputName != "" {
		return filepath.Join(cfg.OutputDir, cfg.OutputName)
	}
	timestamp := time.Now().Format("20060102-150405")
	return filepath.Join(cfg.OutputDir, fmt.Sprintf("%s-%s-%s.html", chart, cfg.AgentID, timestamp))
}
