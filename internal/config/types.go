package config

import "time"

// LogFormat selects the zap encoder used by the diagnostic logger.
type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
)

// Config is the top-level contractqa configuration, corresponding to .contractqa.yml.
type Config struct {
	Backend BackendConfig `yaml:"backend" koanf:"backend"`
	Viewer  ViewerConfig  `yaml:"viewer" koanf:"viewer"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	History HistoryConfig `yaml:"history" koanf:"history"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

// BackendConfig locates the document-ingestion and question-answering service.
type BackendConfig struct {
	URL        string `yaml:"url" koanf:"url"`
	UploadPath string `yaml:"upload_path" koanf:"upload_path"`
	AskPath    string `yaml:"ask_path" koanf:"ask_path"`
	// Timeout bounds each backend request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// ViewerConfig controls local page rendering.
type ViewerConfig struct {
	Scale     float64 `yaml:"scale" koanf:"scale"`
	OutputDir string  `yaml:"output_dir" koanf:"output_dir"`
}

// ServerConfig holds settings for the local web viewer.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// HistoryConfig controls the local record of uploads and questions.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	Path    string `yaml:"path" koanf:"path"`
}

// LogConfig holds diagnostic logger settings.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}
