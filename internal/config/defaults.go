package config

// DefaultScale is the fixed viewport scale factor pages are rendered at.
const DefaultScale = 1.5

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:        "http://localhost:5000",
			UploadPath: "/upload",
			AskPath:    "/ask",
		},
		Viewer: ViewerConfig{
			Scale:     DefaultScale,
			OutputDir: "pages",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".contractqa/history.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatConsole,
		},
	}
}
