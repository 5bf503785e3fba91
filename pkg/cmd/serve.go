package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"InspectorCharts/pkg/config"
	"InspectorCharts/pkg/fetching"
	"InspectorCharts/pkg/graphing"
	"InspectorCharts/pkg/hover"
	"InspectorCharts/pkg/metrics"

	"github.com/spf13/cobra"
)

// NewServeCmd returns the serve subcommand.
func NewServeCmd() *cobra.Command {
	cfg := config.New()
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve live buffer charts over HTTP",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := InitCmd(cmd, cfg)
			if err != nil {
				return err
			}
			return Serve(cmd.Context(), cc)
		},
	}

	cfg.AddConfigFlag(cmd)
	cfg.AddBackendFlags(cmd)
	cfg.AddPollingFlags(cmd)
	cfg.AddChartFlags(cmd)
	cfg.AddServerFlags(cmd)
	return cmd
}

// server holds the HTTP server state
type server struct {
	ctx      *CmdContext
	store    *hover.Store
	poller   *fetching.Poller
	renderer *graphing.Renderer

	mu     sync.RWMutex
	charts map[string]*graphing.ChartData
}

func newServer(ctx *CmdContext, store *hover.Store, poller *fetching.Poller) *server {
	return &server{
		ctx:      ctx,
		store:    store,
		poller:   poller,
		renderer: &graphing.Renderer{HoverURL: config.HoverPath},
		charts:   make(map[string]*graphing.ChartData),
	}
}

// Serve runs the chart server until ctx is cancelled or a signal arrives.
// When an agent is configured its trailing window is polled in the
// background.
func Serve(parent context.Context, cc *CmdContext) error {
	ctx, cancel := signalContext(parent)
	defer cancel()

	store := hover.NewStore()
	defer store.Close()

	var poller *fetching.Poller
	if cc.Config.AgentID != "" {
		poller = fetching.NewPoller(cc.Fetcher, cc.Config.AgentID, cc.Config.Window, cc.Config.Interval)
		defer poller.Close()
	}

	srv := newServer(cc, store, poller)
	if poller != nil {
		updates, unsubscribe := poller.Subscribe()
		defer unsubscribe()
		go srv.consume(updates)
		poller.Start(ctx)
	}

	addr := fmt.Sprintf(":%d", cc.Config.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("HTTP server listening on %s", addr)
	log.Printf("Endpoints:")
	log.Printf("  GET  %s             - Chart page (agent, chart, from, to)", config.ChartPagePath)
	log.Printf("  GET  %s        - Chart data and options as JSON", config.ChartDataPath)
	log.Printf("  GET  %s       - Chart as a PNG image", config.ChartImagePath)
	log.Printf("  GET  %s             - Current hover state", config.HoverPath)
	log.Printf("  POST %s             - Report a hover event", config.HoverPath)
	log.Printf("  GET  /health            - Health check")
	log.Printf("  GET  /metrics           - Prometheus metrics")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), config.ShutdownTimeout*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.ChartPagePath, s.handleChart)
	mux.HandleFunc(config.ChartDataPath, s.handleChartData)
	mux.HandleFunc(config.ChartImagePath, s.handleChartImage)
	mux.HandleFunc(config.HoverPath, s.handleHover)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// consume keeps the configured chart's data current from poller updates.
func (s *server) consume(updates <-chan fetching.Update) {
	for u := range updates {
		if u.Err != nil || u.Payload == nil {
			continue
		}
		data, err := graphing.Reshape(u.Payload, s.ctx.Spec, s.ctx.Labels)
		if errors.Is(err, graphing.ErrMetricMissing) {
			data = &graphing.ChartData{}
		} else if err != nil {
			log.Printf("Warning: %s: %v", s.ctx.Spec.Key, err)
			continue
		}
		s.remember(u.Query.AgentID, s.ctx.Spec.Key, data)
	}
}

// chartKey identifies the data behind one agent's chart page.
func chartKey(agent, chart string) string {
	return agent + "/" + chart
}

func (s *server) remember(agent, chart string, data *graphing.ChartData) {
	s.mu.Lock()
	s.charts[chartKey(agent, chart)] = data
	s.mu.Unlock()
}

func (s *server) chartData(agent, chart string) *graphing.ChartData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.charts[chartKey(agent, chart)]
}

// sink records hover events in the store and counts them.
func (s *server) sink() hover.Sink {
	return hover.SinkFunc(func(e hover.Event) {
		metrics.ObserveHover(e.Chart)
		s.store.Dispatch(e)
	})
}

func (s *server) spec(r *http.Request) (graphing.ChartSpec, error) {
	key := r.URL.Query().Get("chart")
	if key == "" {
		return s.ctx.Spec, nil
	}
	spec, ok := graphing.Lookup(key)
	if !ok {
		return graphing.ChartSpec{}, fmt.Errorf("unknown chart %q (valid: %v)", key, graphing.Keys())
	}
	return spec, nil
}

// payload returns the chart data requested by r. Requests for the polled
// agent without an explicit range are answered from the latest poll.
func (s *server) payload(r *http.Request) (*graphing.Payload, fetching.Query, int, error) {
	q := r.URL.Query()
	agent := q.Get("agent")
	if agent == "" {
		agent = s.ctx.Config.AgentID
	}
	if agent == "" {
		return nil, fetching.Query{}, http.StatusBadRequest, errors.New("agent is required")
	}

	from, to := q.Get("from"), q.Get("to")
	if s.poller != nil && agent == s.ctx.Config.AgentID && from == "" && to == "" {
		u, ok := s.poller.Latest()
		if !ok {
			u = s.poller.Poll(r.Context())
		}
		if u.Err != nil {
			return nil, u.Query, http.StatusBadGateway, u.Err
		}
		return u.Payload, u.Query, http.StatusOK, nil
	}

	start, end, err := timeRange(from, to, s.ctx.Config.Window, time.Now())
	if err != nil {
		return nil, fetching.Query{}, http.StatusBadRequest, err
	}

	query := fetching.Query{AgentID: agent, From: start, To: end}
	p, err := s.ctx.Fetcher.Fetch(r.Context(), query)
	if err != nil {
		return nil, query, http.StatusBadGateway, err
	}
	return p, query, http.StatusOK, nil
}

func (s *server) build(r *http.Request) (*Chart, fetching.Query, int, error) {
	spec, err := s.spec(r)
	if err != nil {
		return nil, fetching.Query{}, http.StatusBadRequest, err
	}

	p, query, status, err := s.payload(r)
	if err != nil {
		return nil, query, status, err
	}

	chart, err := BuildChart(p, spec, s.ctx.Labels, s.sink())
	if err != nil {
		return nil, query, http.StatusInternalServerError, err
	}
	s.remember(query.AgentID, spec.Key, chart.Data)
	return chart, query, http.StatusOK, nil
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chart, query, status, err := s.build(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	page := graphing.PageData{
		Chart: chart.Spec.Key,
		Agent: query.AgentID,
		From:  s.ctx.Labels.Time(query.From.UnixMilli()),
		To:    s.ctx.Labels.Time(query.To.UnixMilli()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, page, chart.Option, chart.Normal); err != nil {
		log.Printf("Error rendering %s: %v", chart.Spec.Key, err)
		return
	}
	metrics.ObserveRender(chart.Spec.Key, "http")
}

func (s *server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chart, _, status, err := s.build(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	var buf bytes.Buffer
	err = s.renderer.RenderImage(&buf, chart.Option, chart.Normal, graphing.DefaultImageWidth, graphing.DefaultImageHeight)
	if errors.Is(err, graphing.ErrTooFewPoints) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
	metrics.ObserveRender(chart.Spec.Key, graphing.FormatPNG)
}

// chartResponse is the JSON form of a chart.
type chartResponse struct {
	Chart   graphing.ChartSpec     `json:"chart"`
	AgentID string                 `json:"agentId"`
	From    int64                  `json:"from"`
	To      int64                  `json:"to"`
	Empty   bool                   `json:"empty"`
	Data    *graphing.DataOption   `json:"data"`
	Options *graphing.NormalOption `json:"options"`
}

func (s *server) handleChartData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chart, query, status, err := s.build(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chartResponse{
		Chart:   chart.Spec,
		AgentID: query.AgentID,
		From:    query.From.UnixMilli(),
		To:      query.To.UnixMilli(),
		Empty:   chart.Data.IsEmpty(),
		Data:    chart.Option,
		Options: chart.Normal,
	})
	metrics.ObserveRender(chart.Spec.Key, "json")
}

// hoverRequest is what chart pages post on pointer movement. A missing
// or out-of-range index means no element is under the cursor.
type hoverRequest struct {
	Agent   string  `json:"agent"`
	Chart   string  `json:"chart"`
	Type    string  `json:"type"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Index   *int    `json:"index"`
}

func (s *server) handleHover(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.store.Current())

	case http.MethodPost:
		var req hoverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid hover event", http.StatusBadRequest)
			return
		}

		spec := s.ctx.Spec
		if req.Chart != "" {
			var ok bool
			if spec, ok = graphing.Lookup(req.Chart); !ok {
				http.Error(w, fmt.Sprintf("unknown chart %q", req.Chart), http.StatusBadRequest)
				return
			}
		}

		agent := req.Agent
		if agent == "" {
			agent = s.ctx.Config.AgentID
		}
		data := s.chartData(agent, spec.Key)

		var elements []graphing.Element
		if req.Index != nil && *req.Index >= 0 && *req.Index < data.Len() {
			elements = []graphing.Element{{Index: *req.Index}}
		}

		builder := graphing.NewBuilder(spec, s.sink())
		normal := builder.NormalOption(data)
		normal.Hover.OnHover(graphing.MouseEvent{
			Type:    req.Type,
			OffsetX: req.OffsetX,
			OffsetY: req.OffsetY,
		}, elements)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.store.Current())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
