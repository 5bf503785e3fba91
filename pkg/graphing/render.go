package graphing

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

// PageData describes the page a chart is rendered into.
type PageData struct {
	Title     string
	Agent     string
	Chart     string
	ChartID   string
	From      time.Time
	To        time.Time
	Generated time.Time
	HoverURL  string
	Empty     bool
}

// Renderer turns chart options into standalone HTML pages.
type Renderer struct {
	// HoverURL, if set, is where the page posts hover events.
	HoverURL string
}

// Render writes the chart for data and normal as an HTML page to w.
func (r *Renderer) Render(w io.Writer, page PageData, data *DataOption, normal *NormalOption) error {
	if page.ChartID == "" {
		page.ChartID = "chart_" + strings.ReplaceAll(page.Chart, "-", "_")
	}
	if page.Title == "" {
		page.Title = normal.Title.Text
	}
	if page.HoverURL == "" {
		page.HoverURL = r.HoverURL
	}
	if data == nil {
		data = &DataOption{}
	}
	if len(data.Labels) == 0 {
		page.Empty = true
	}
	if page.Generated.IsZero() {
		page.Generated = time.Now()
	}

	html, err := renderChartPage(page, data, normal)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, html)
	return err
}

// renderChartPage renders the echarts page and injects the header, styles
// and scripts around it.
func renderChartPage(page PageData, data *DataOption, normal *NormalOption) (string, error) {
	line := createLineChart(page.ChartID, data, normal)

	var buf strings.Builder
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	header, err := executeTemplate("header", page)
	if err != nil {
		return "", err
	}
	styles, err := executeTemplate("styles", page)
	if err != nil {
		return "", err
	}
	scripts, err := executeTemplate("scripts", page)
	if err != nil {
		return "", err
	}

	html := buf.String()
	html = strings.Replace(html, "</head>", styles+"</head>", 1)
	html = strings.Replace(html, "<body>", "<body>\n"+header, 1)
	html = strings.Replace(html, "</body>", scripts+"</body>", 1)
	return html, nil
}

func executeTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}
