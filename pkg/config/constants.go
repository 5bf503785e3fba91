package config

const (
	// EnvPrefix prefixes environment overrides, e.g. INSPECTOR_AGENT.
	EnvPrefix      = "INSPECTOR"
	ConfigFileFlag = "config"

	ChartPagePath  = "/chart"
	ChartDataPath  = "/chart/data"
	ChartImagePath = "/chart/image"
	HoverPath      = "/hover"

	// ShutdownTimeout is the graceful HTTP shutdown limit in seconds.
	ShutdownTimeout = 5

	ArchivePrefix = "buffer"
)
