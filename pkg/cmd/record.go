package cmd

import (
	"context"
	"fmt"
	"log"
	"math"

	"InspectorCharts/pkg/config"
	"InspectorCharts/pkg/fetching"
	"InspectorCharts/pkg/formatting"
	"InspectorCharts/pkg/graphing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRecordCmd returns the record subcommand.
func NewRecordCmd() *cobra.Command {
	cfg := config.New()
	var graph bool

	cmd := &cobra.Command{
		Use:     "record",
		Aliases: []string{"rec"},
		Short:   "Poll an agent's buffer charts into an archive file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := InitCmd(cmd, cfg)
			if err != nil {
				return err
			}
			if cfg.AgentID == "" {
				return fmt.Errorf("--agent is required")
			}

			session := uuid.NewString()[:8]
			path := cfg.GenerateOutputPath(config.ArchivePrefix + "-" + session)

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			if cfg.Duration > 0 {
				ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
				defer cancel()
			}

			log.Printf("Recording agent %s every %v (session %s)", cfg.AgentID, cfg.Interval, session)
			count, err := Record(ctx, cc, path)
			if err != nil {
				return err
			}
			log.Printf("Recorded %d rows to %s", count, path)

			if graph && count > 0 {
				if err := graphing.GenerateGraphFromFile(path, "", cc.Spec, cc.Labels, graphing.FormatHTML); err != nil {
					log.Printf("Warning: graph generation failed: %v", err)
				}
			}
			return nil
		},
	}

	cfg.AddConfigFlag(cmd)
	cfg.AddBackendFlags(cmd)
	cfg.AddPollingFlags(cmd)
	cfg.AddChartFlags(cmd)
	cfg.AddOutputFlags(cmd)
	cmd.Flags().BoolVar(&graph, "graph", false, "Generate the chart page from the archive when done")
	return cmd
}

// Record polls the configured agent and appends every new bucket to the
// archive at path until ctx is done. It returns the number of rows written.
func Record(ctx context.Context, cc *CmdContext, path string) (int, error) {
	writer, err := formatting.NewWriter(cc.Config.OutputFormat, path)
	if err != nil {
		return 0, err
	}

	arc := &archiver{writer: writer, agentID: cc.Config.AgentID}

	poller := fetching.NewPoller(cc.Fetcher, cc.Config.AgentID, cc.Config.Window, cc.Config.Interval)
	updates, unsubscribe := poller.Subscribe()
	poller.Start(ctx)

	var writeErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case u, ok := <-updates:
			if !ok {
				break loop
			}
			if u.Err != nil {
				continue
			}
			if _, err := arc.write(u.Payload); err != nil {
				writeErr = err
				break loop
			}
		}
	}

	unsubscribe()
	poller.Close()

	if writeErr == nil {
		_, writeErr = arc.finish()
	}
	if err := writer.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("failed to close archive: %w", err)
	}
	return arc.count, writeErr
}

// archiver writes buckets newer than the last one already written. Polled
// windows overlap, so every bucket would otherwise be written many times.
// The newest bucket of a window may still be incomplete, so it is held back
// until a later window moves past it or finish is called.
type archiver struct {
	writer  formatting.Writer
	agentID string
	last    int64
	pending *graphing.Payload
	count   int
}

func (a *archiver) write(p *graphing.Payload) (int, error) {
	if p == nil || len(p.X) == 0 {
		return 0, nil
	}

	newest := p.X[0]
	for _, ts := range p.X {
		if ts > newest {
			newest = ts
		}
	}
	a.pending = p
	return a.writeBefore(p, newest)
}

// finish writes the held-back newest bucket of the last window.
func (a *archiver) finish() (int, error) {
	if a.pending == nil {
		return 0, nil
	}
	p := a.pending
	a.pending = nil
	return a.writeBefore(p, math.MaxInt64)
}

// writeBefore writes the rows of p with a.last < timestamp < before.
func (a *archiver) writeBefore(p *graphing.Payload, before int64) (int, error) {
	var fresh []formatting.Row
	last := a.last
	for _, row := range graphing.RowsFromPayload(a.agentID, p) {
		if row.Timestamp > a.last && row.Timestamp < before {
			fresh = append(fresh, row)
			if row.Timestamp > last {
				last = row.Timestamp
			}
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := a.writer.WriteBatch(fresh); err != nil {
		return 0, fmt.Errorf("failed to write rows: %w", err)
	}
	if err := a.writer.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush rows: %w", err)
	}

	a.last = last
	a.count += len(fresh)
	return len(fresh), nil
}
