package store

import (
        "encoding/json"
        "errors"
        "fmt"
        "os"
        "path/filepath"
        "strconv"
        "strings"
)

const defaultSnippetContext = 3

type GlobalConfig struct {
        // Reveal is a command template used to open a step location, e.g.
        // "code -g {abs}:{line}". Placeholders: {file} (project-relative), {abs}, {line}.
        // Empty means print the location and a code snippet instead.
        Reveal string `json:"reveal,omitempty"`

        // Format is the default CLI output format (json|yaml).
        Format string `json:"format,omitempty"`

        // SnippetContext is the number of lines shown around a step line. Nil means default.
        SnippetContext *int `json:"snippetContext,omitempty"`

        TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
        // Style is the glamour style used for step descriptions (dark|light|notty).
        // Empty means detect from the terminal background.
        Style string `json:"style,omitempty"`
}

func (c *GlobalConfig) Context() int {
        if c == nil || c.SnippetContext == nil || *c.SnippetContext < 0 {
                return defaultSnippetContext
        }
        return *c.SnippetContext
}

func (c *GlobalConfig) TUIStyle() string {
        if c == nil || c.TUI == nil {
                return ""
        }
        return strings.TrimSpace(c.TUI.Style)
}

// ConfigKeys lists the keys accepted by Set, in display order.
var ConfigKeys = []string{"reveal", "format", "snippetContext", "tui.style"}

// Set assigns a config value from its string form. An empty value clears the key.
func (c *GlobalConfig) Set(key, value string) error {
        value = strings.TrimSpace(value)
        switch key {
        case "reveal":
                c.Reveal = value
        case "format":
                switch value {
                case "", "json", "yaml":
                        c.Format = value
                default:
                        return fmt.Errorf("invalid format: %q (expected json|yaml)", value)
                }
        case "snippetContext":
                if value == "" {
                        c.SnippetContext = nil
                        return nil
                }
                n, err := strconv.Atoi(value)
                if err != nil || n < 0 {
                        return fmt.Errorf("invalid snippetContext: %q (expected a non-negative integer)", value)
                }
                c.SnippetContext = &n
        case "tui.style":
                if value == "" {
                        c.TUI = nil
                        return nil
                }
                if c.TUI == nil {
                        c.TUI = &TUIConfig{}
                }
                c.TUI.Style = value
        default:
                return fmt.Errorf("unknown config key: %q (expected one of %s)", key, strings.Join(ConfigKeys, ", "))
        }
        return nil
}

func ConfigDir() (string, error) {
        // Test/advanced override (keeps unit tests from touching ~/.devtour).
        if v := strings.TrimSpace(os.Getenv("DEVTOUR_CONFIG_DIR")); v != "" {
                return v, nil
        }
        home, err := os.UserHomeDir()
        if err != nil {
                return "", err
        }
        return filepath.Join(home, ".devtour"), nil
}

func ConfigPath() (string, error) {
        dir, err := ConfigDir()
        if err != nil {
                return "", err
        }
        return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
        path, err := ConfigPath()
        if err != nil {
                return nil, err
        }
        b, err := os.ReadFile(path)
        if err != nil {
                if errors.Is(err, os.ErrNotExist) {
                        return &GlobalConfig{}, nil
                }
                return nil, err
        }
        var cfg GlobalConfig
        if err := json.Unmarshal(b, &cfg); err != nil {
                return nil, fmt.Errorf("parse %s: %w", path, err)
        }
        return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
        path, err := ConfigPath()
        if err != nil {
                return err
        }
        dir := filepath.Dir(path)
        if err := os.MkdirAll(dir, 0o755); err != nil {
                return err
        }
        b, err := json.MarshalIndent(cfg, "", "  ")
        if err != nil {
                return err
        }

        // Keep a copy of the previous config; ignore errors so a failed backup never blocks a save.
        if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
                _ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
        }
        return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
