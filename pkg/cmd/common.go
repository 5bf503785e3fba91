package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"InspectorCharts/pkg/config"
	"InspectorCharts/pkg/fetching"
	"InspectorCharts/pkg/graphing"
	"InspectorCharts/pkg/hover"

	"github.com/spf13/cobra"
)

// CmdContext holds initialized command resources
type CmdContext struct {
	Config  *config.Config
	Fetcher fetching.Fetcher
	Spec    graphing.ChartSpec
	Labels  graphing.LabelFormat
}

// InitCmd loads the config overlay for cmd and creates the backend fetcher.
func InitCmd(cmd *cobra.Command, cfg *config.Config) (*CmdContext, error) {
	if err := cfg.Load(cmd); err != nil {
		return nil, err
	}

	labels, err := cfg.LabelFormat()
	if err != nil {
		return nil, err
	}

	fetcher, err := fetching.NewHTTPFetcher(cfg.BackendURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	return &CmdContext{
		Config:  cfg,
		Fetcher: fetcher,
		Spec:    cfg.Spec(),
		Labels:  labels,
	}, nil
}

// Chart is everything needed to render or serialize one chart.
type Chart struct {
	Spec   graphing.ChartSpec
	Data   *graphing.ChartData
	Option *graphing.DataOption
	Normal *graphing.NormalOption
}

// BuildChart reshapes p for spec and builds its options. A payload without
// the spec's metric yields an empty chart.
func BuildChart(p *graphing.Payload, spec graphing.ChartSpec, labels graphing.LabelFormat, sink hover.Sink) (*Chart, error) {
	data, err := graphing.Reshape(p, spec, labels)
	if errors.Is(err, graphing.ErrMetricMissing) {
		data = &graphing.ChartData{}
	} else if err != nil {
		return nil, err
	}

	builder := graphing.NewBuilder(spec, sink)
	return &Chart{
		Spec:   spec,
		Data:   data,
		Option: builder.DataOption(data),
		Normal: builder.NormalOption(data),
	}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			log.Println("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// parseTime accepts epoch milliseconds or RFC3339.
func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want epoch ms or RFC3339", s)
	}
	return t, nil
}

// timeRange resolves optional from/to values into a query range. Missing
// bounds default to the trailing window ending now.
func timeRange(from, to string, window time.Duration, now time.Time) (time.Time, time.Time, error) {
	end := now
	if to != "" {
		t, err := parseTime(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}

	start := end.Add(-window)
	if from != "" {
		t, err := parseTime(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: %s is not before %s", start, end)
	}
	return start, end, nil
}
