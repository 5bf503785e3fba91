package graphing

import (
	"html/template"
	"time"
)

// HTML fragments injected around the go-echarts page.
var templates = template.Must(template.New("").Funcs(templateFuncs).Parse(`
{{define "styles"}}
<style>
* {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
}
body {
    max-width: 1400px;
    margin: 0 auto;
    padding: 20px;
}
.inspector-header {
    border-bottom: 2px solid #333;
    padding-bottom: 10px;
    margin-bottom: 15px;
}
.inspector-header h1 {
    margin: 0;
    font-size: 18px;
}
.inspector-meta {
    font-size: 11px;
    color: #666;
    font-family: monospace;
}
.inspector-empty {
    padding: 10px;
    background: #f5f5f5;
    border: 1px solid #ddd;
    font-size: 12px;
}
.container {
    display: block !important;
    margin: 0 0 10px 0 !important;
    padding: 15px !important;
    background: #f5f5f5 !important;
    border: 1px solid #ddd !important;
    overflow: hidden !important;
}
.item {
    margin: 0 !important;
}
</style>
{{end}}

{{define "header"}}
<div class="inspector-header">
    <h1>{{.Title}}</h1>
    <div class="inspector-meta">
        {{if .Agent}}Agent: {{.Agent}}{{end}}
        {{if .From}} | {{.From | formatTime}} ~ {{.To | formatTime}}{{end}}
        {{if .Generated}} | Generated: {{.Generated | formatTime}}{{end}}
    </div>
</div>
{{if .Empty}}<div class="inspector-empty">No data collected for this range.</div>{{end}}
{{end}}

{{define "scripts"}}
<script>
window.addEventListener('resize', function() {
    document.querySelectorAll('[_echarts_instance_]').forEach(function(el) {
        var c = echarts.getInstanceByDom(el);
        if (c) c.resize();
    });
});
{{if .HoverURL}}
window.addEventListener('load', function() {
    var el = document.getElementById({{.ChartID}});
    var chart = el && echarts.getInstanceByDom(el);
    if (!chart) return;
    var send = function(type, e, index) {
        fetch({{.HoverURL}}, {
            method: 'POST',
            headers: {'Content-Type': 'application/json'},
            body: JSON.stringify({agent: {{.Agent}}, chart: {{.Chart}}, type: type, offsetX: e.offsetX, offsetY: e.offsetY, index: index})
        });
    };
    chart.getZr().on('mousemove', function(e) {
        var point = chart.convertFromPixel({seriesIndex: 0}, [e.offsetX, e.offsetY]);
        var count = (chart.getOption().xAxis[0].data || []).length;
        var index = point ? Math.round(point[0]) : -1;
        if (index < 0 || index >= count) index = -1;
        send('mousemove', e, index);
    });
    chart.getZr().on('globalout', function(e) {
        send('mouseout', e, -1);
    });
});
{{end}}
</script>
{{end}}
`))

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05 MST")
	},
}
