package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kolah/refdoc/internal/document"
	"github.com/kolah/refdoc/internal/schema"
)

// DefaultFile is loaded from the working directory when --config is not given.
const DefaultFile = "refdoc.yaml"

type Config struct {
	// File is the config file that was loaded, if any.
	File string `koanf:"-"`

	Spec        string                 `koanf:"spec"`
	Output      string                 `koanf:"output"`
	Templates   TemplateConfig         `koanf:"templates"`
	Render      RenderConfig           `koanf:"render"`
	Engine      EngineConfig           `koanf:"engine"`
	Check       CheckConfig            `koanf:"check"`
	Groups      map[string]GroupConfig `koanf:"groups"`
	IncludeTags []string               `koanf:"include-tags"`
	ExcludeTags []string               `koanf:"exclude-tags"`
	Log         LogConfig              `koanf:"log"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

type RenderConfig struct {
	Title         string `koanf:"title"`
	BaseURL       string `koanf:"base-url"`
	TOC           bool   `koanf:"toc"`
	ExampleFormat string `koanf:"example-format"`
}

type EngineConfig struct {
	MaxDepth         int `koanf:"max-depth"`
	MaxProperties    int `koanf:"max-properties"`
	MaxReferenceHops int `koanf:"max-reference-hops"`
	CacheSize        int `koanf:"cache-size"`
	Workers          int `koanf:"workers"`
}

type CheckConfig struct {
	Samples bool `koanf:"samples"`
	Strict  bool `koanf:"strict"`
}

// GroupConfig overrides what the renderer says about one tag group.
type GroupConfig struct {
	Description string `koanf:"description"`
	Auth        string `koanf:"auth"`
	// AuthHeader is the curl header line for the group, e.g.
	// "X-Signature: ${SIGNATURE}". "none" suppresses the header.
	AuthHeader string `koanf:"auth-header"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func defaults() map[string]any {
	limits := schema.DefaultLimits()
	return map[string]any{
		"output":                    "REFERENCE.md",
		"render.example-format":     "json",
		"engine.max-depth":          limits.MaxDepth,
		"engine.max-properties":     limits.MaxProperties,
		"engine.max-reference-hops": limits.MaxReferenceHops,
		"engine.cache-size":         document.DefaultCacheSize,
		"log.level":                 "info",
	}
}

// BindCommonFlags binds the flags shared by generate and check.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: refdoc.yaml)")
	flags.StringP("spec", "s", "", "OpenAPI spec file path")
	flags.String("templates", "", "Custom templates directory")
	flags.StringSlice("include-tags", nil, "Groups to include (exclusive)")
	flags.StringSlice("exclude-tags", nil, "Groups to exclude")
	flags.Int("max-depth", 0, "Maximum schema nesting rendered in examples")
	flags.Int("max-properties", 0, "Maximum properties per synthesized object")
	flags.Int("workers", 0, "Concurrent operation builds (default: GOMAXPROCS)")
	flags.Bool("check-samples", false, "Validate synthesized request examples against the spec")
	flags.Bool("strict", false, "Fail when a synthesized example does not validate")
}

// BindRenderFlags binds the flags that only affect the rendered document.
func BindRenderFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("output", "o", "", "Output markdown file (default: REFERENCE.md)")
	flags.String("title", "", "Document title (default: \"<info.title> API Reference\")")
	flags.String("base-url", "", "Base URL when the spec declares no servers")
	flags.Bool("toc", false, "Render a table of contents")
	flags.String("example-format", "", "Example encoding: json or yaml")
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.File = configFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	getStringSlice := func(name string) []string {
		if v, err := cmd.Flags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		return nil
	}

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	getInt := func(name string) int {
		if v, err := cmd.Flags().GetInt(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetInt(name); err == nil {
			return v
		}
		return 0
	}

	if v := getString("spec"); v != "" {
		m["spec"] = v
	}
	if v := getString("output"); v != "" {
		m["output"] = v
	}
	if v := getString("templates"); v != "" {
		m["templates.dir"] = v
	}
	if v := getStringSlice("include-tags"); len(v) > 0 {
		m["include-tags"] = v
	}
	if v := getStringSlice("exclude-tags"); len(v) > 0 {
		m["exclude-tags"] = v
	}
	if v := getString("log-level"); v != "" {
		m["log.level"] = v
	}

	// Rendering
	if v := getString("title"); v != "" {
		m["render.title"] = v
	}
	if v := getString("base-url"); v != "" {
		m["render.base-url"] = v
	}
	if v := getString("example-format"); v != "" {
		m["render.example-format"] = v
	}
	if flagChanged("toc") {
		m["render.toc"] = getBool("toc")
	}

	// Engine limits
	if flagChanged("max-depth") {
		m["engine.max-depth"] = getInt("max-depth")
	}
	if flagChanged("max-properties") {
		m["engine.max-properties"] = getInt("max-properties")
	}
	if flagChanged("workers") {
		m["engine.workers"] = getInt("workers")
	}

	if flagChanged("check-samples") {
		m["check.samples"] = getBool("check-samples")
	}
	if flagChanged("strict") {
		m["check.strict"] = getBool("strict")
	}

	return m
}

func (c *Config) Validate() error {
	if c.Spec == "" {
		return fmt.Errorf("spec file is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output file is required")
	}

	validFormats := map[string]bool{"": true, "json": true, "yaml": true}
	if !validFormats[c.Render.ExampleFormat] {
		return fmt.Errorf("invalid example format: %s (valid: json, yaml)", c.Render.ExampleFormat)
	}

	if c.Engine.MaxDepth < 0 {
		return fmt.Errorf("invalid max depth: %d (must be >= 0)", c.Engine.MaxDepth)
	}
	if c.Engine.MaxProperties < 1 {
		return fmt.Errorf("invalid max properties: %d (must be >= 1)", c.Engine.MaxProperties)
	}
	if c.Engine.MaxReferenceHops < 1 {
		return fmt.Errorf("invalid max reference hops: %d (must be >= 1)", c.Engine.MaxReferenceHops)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("invalid workers: %d (must be >= 0)", c.Engine.Workers)
	}

	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("invalid log level: %s", c.Log.Level)
		}
	}

	return nil
}

// EngineLimits returns the synthesis bounds configured for the engine.
func (c *Config) EngineLimits() schema.Limits {
	return schema.Limits{
		MaxDepth:         c.Engine.MaxDepth,
		MaxProperties:    c.Engine.MaxProperties,
		MaxReferenceHops: c.Engine.MaxReferenceHops,
	}
}

// Group returns the overrides for a group; the zero value when none are set.
func (c *Config) Group(name string) GroupConfig {
	return c.Groups[name]
}
