// Package graphing reshapes agent buffer statistics into chart series,
// builds chart options and renders them with go-echarts.
package graphing

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"InspectorCharts/pkg/formatting"
)

// Generator renders a chart page from an archive of recorded samples.
type Generator struct {
	inputPath  string
	outputPath string
	spec       ChartSpec
	labels     LabelFormat
}

// NewGenerator creates a generator writing the chart for spec to outputPath.
func NewGenerator(inputPath, outputPath string, spec ChartSpec, labels LabelFormat) (*Generator, error) {
	if inputPath == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if outputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}

	return &Generator{
		inputPath:  inputPath,
		outputPath: outputPath,
		spec:       spec,
		labels:     labels,
	}, nil
}

// Generate loads the archive, reshapes the spec's metric and writes an
// HTML page, or a PNG image when the output path ends in .png.
func (g *Generator) Generate() error {
	rows, err := formatting.LoadRows(g.inputPath)
	if err != nil {
		return fmt.Errorf("failed to load samples: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no samples in %s", g.inputPath)
	}

	payload := PayloadFromRows(rows)
	data, err := Reshape(payload, g.spec, g.labels)
	if err != nil {
		return err
	}

	builder := NewBuilder(g.spec, nil)
	option, normal := builder.DataOption(data), builder.NormalOption(data)

	r := &Renderer{}
	err = WriteFile(g.outputPath, func(w io.Writer) error {
		if strings.EqualFold(filepath.Ext(g.outputPath), "."+FormatPNG) {
			return r.RenderImage(w, option, normal, DefaultImageWidth, DefaultImageHeight)
		}
		page := PageData{
			Chart: g.spec.Key,
			Agent: agentOf(rows),
			Empty: data.IsEmpty(),
		}
		if !data.IsEmpty() {
			page.From = g.labels.Time(data.Timestamps[0])
			page.To = g.labels.Time(data.Timestamps[len(data.Timestamps)-1])
		}
		return r.Render(w, page, option, normal)
	})
	if err != nil {
		return err
	}

	log.Printf("Generated %s chart (%d points): %s", g.spec.Key, data.Len(), g.outputPath)
	return nil
}

// WriteFile creates path and its directory and fills it with render. The
// file is removed if render or closing it fails.
func WriteFile(path string, render func(w io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return render(f)
}

// Output formats of GenerateGraphFromFile.
const (
	FormatHTML = "html"
	FormatPNG  = "png"
)

// GenerateGraphFromFile renders the chart for spec next to the archive
// unless outputPath names a file. format picks the extension of generated
// names; an explicit outputPath's extension wins.
func GenerateGraphFromFile(inputPath, outputPath string, spec ChartSpec, labels LabelFormat, format string) error {
	if format == "" {
		format = FormatHTML
	}
	ext := filepath.Ext(outputPath)
	if outputPath == "" || (ext != "."+FormatHTML && ext != "."+FormatPNG) {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		dir := outputPath
		if dir == "" {
			dir = filepath.Dir(inputPath)
		}
		outputPath = filepath.Join(dir, base+"_"+spec.Key+"."+format)
	}

	gen, err := NewGenerator(inputPath, outputPath, spec, labels)
	if err != nil {
		return err
	}
	return gen.Generate()
}

// RowsFromPayload flattens every metric of p into archive rows, sorted by
// metric then timestamp.
func RowsFromPayload(agentID string, p *Payload) []formatting.Row {
	if p == nil {
		return nil
	}

	metrics := make([]string, 0, len(p.Y))
	for m := range p.Y {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)

	rows := make([]formatting.Row, 0, len(metrics)*len(p.X))
	for _, m := range metrics {
		samples := p.Y[m]
		for i, ts := range p.X {
			v := math.NaN()
			if i < len(samples) {
				v = parseData(samples[i].Value())
			}
			rows = append(rows, formatting.NewRow(ts, agentID, m, v))
		}
	}
	return rows
}

// PayloadFromRows rebuilds a payload from archive rows. Every metric gets
// a sample for every timestamp seen in the archive; gaps are NaN.
func PayloadFromRows(rows []formatting.Row) *Payload {
	seen := make(map[int64]bool)
	values := make(map[string]map[int64]float64)

	for _, r := range rows {
		seen[r.Timestamp] = true
		if values[r.Metric] == nil {
			values[r.Metric] = make(map[int64]float64)
		}
		values[r.Metric][r.Timestamp] = r.Float()
	}

	p := &Payload{
		X: make([]int64, 0, len(seen)),
		Y: make(map[string][]Sample, len(values)),
	}
	for ts := range seen {
		p.X = append(p.X, ts)
	}
	sort.Slice(p.X, func(i, j int) bool { return p.X[i] < p.X[j] })

	for m, byTs := range values {
		samples := make([]Sample, len(p.X))
		for i, ts := range p.X {
			v, ok := byTs[ts]
			if !ok {
				v = math.NaN()
			}
			samples[i] = Sample{v, v, v}
		}
		p.Y[m] = samples
	}
	return p
}

func agentOf(rows []formatting.Row) string {
	for _, r := range rows {
		if r.AgentID != "" {
			return r.AgentID
		}
	}
	return ""
}
