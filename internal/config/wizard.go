package config

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to contractqa! Let's point it at your document service.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend URL.
	backendPrompt := promptui.Prompt{
		Label:    "Backend URL",
		Default:  cfg.Backend.URL,
		Validate: validateURL,
	}
	backendURL, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	cfg.Backend.URL = backendURL

	// 2. Render scale.
	scalePrompt := promptui.Prompt{
		Label:    "Page render scale",
		Default:  strconv.FormatFloat(cfg.Viewer.Scale, 'f', -1, 64),
		Validate: validatePositiveFloat,
	}
	scaleStr, err := scalePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("render scale: %w", err)
	}
	cfg.Viewer.Scale, _ = strconv.ParseFloat(scaleStr, 64)

	// 3. Output directory for rendered pages.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for rendered pages",
		Default: cfg.Viewer.OutputDir,
	}
	cfg.Viewer.OutputDir, err = outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// 4. Log format.
	formatPrompt := promptui.Select{
		Label: "Log format",
		Items: []string{string(LogFormatConsole), string(LogFormatJSON)},
	}
	_, format, err := formatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}
	cfg.Log.Format = LogFormat(format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	return nil
}

func validatePositiveFloat(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if f <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
