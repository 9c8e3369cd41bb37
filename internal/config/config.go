package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/konvert/internal/analyzer"
	"github.com/mcncl/konvert/internal/converter"
	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/formatter"
	"github.com/mcncl/konvert/internal/generator"
	"github.com/mcncl/konvert/internal/parser"
)

// Config represents the complete configuration for konvert
type Config struct {
	JSON   JSONConfig   `yaml:"json"`
	YAML   YAMLConfig   `yaml:"yaml"`
	XML    XMLConfig    `yaml:"xml"`
	Limits LimitsConfig `yaml:"limits"`
	Batch  BatchConfig  `yaml:"batch"`
	Dev    DevConfig    `yaml:"dev"`
}

// JSONConfig controls JSON output
type JSONConfig struct {
	Indent int `yaml:"indent"`
}

// YAMLConfig controls YAML output
type YAMLConfig struct {
	Indent int `yaml:"indent"`
}

// XMLConfig controls how documents are mapped to and from XML
type XMLConfig struct {
	Indent          int                     `yaml:"indent"`
	RootTag         string                  `yaml:"root_tag"`
	NullText        string                  `yaml:"null_text"`
	KeyStyle        formatter.KeyStyle      `yaml:"key_style"`
	KeyMappings     map[string]string       `yaml:"key_mappings"`
	SequencePolicy  analyzer.SequencePolicy `yaml:"sequence_policy"`
	DuplicatePolicy parser.DuplicatePolicy  `yaml:"duplicate_policy"`
}

// LimitsConfig bounds the work a single document may cause
type LimitsConfig struct {
	MaxNodes int `yaml:"max_nodes"`
}

// BatchConfig controls batch conversion
type BatchConfig struct {
	Jobs   int    `yaml:"jobs"`
	OutDir string `yaml:"out_dir"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	enc := generator.DefaultOptions()
	dec := parser.DefaultOptions()
	return &Config{
		JSON: JSONConfig{Indent: enc.JSONIndent},
		YAML: YAMLConfig{Indent: enc.YAMLIndent},
		XML: XMLConfig{
			Indent:          enc.XMLIndent,
			RootTag:         enc.RootTag,
			NullText:        enc.NullText,
			KeyStyle:        enc.KeyStyle,
			KeyMappings:     make(map[string]string),
			SequencePolicy:  enc.Sequences,
			DuplicatePolicy: dec.Duplicates,
		},
		Limits: LimitsConfig{MaxNodes: dec.MaxNodes},
		Batch:  BatchConfig{Jobs: 0},
		Dev:    DevConfig{Debug: false},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigNames lists the file names FindConfigFile looks for, in order.
var ConfigNames = []string{".konvert.yml", ".konvert.yaml", "konvert.yml", "konvert.yaml"}

// FindConfigFile searches for a config file in the current directory and its parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range ConfigNames {
			configPath := filepath.Join(currentDir, name)
			if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate reports the first invalid setting as a configuration error
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.NewConfigError(fmt.Sprintf(format, args...), errors.ErrInvalidConfig)
	}

	switch {
	case c.JSON.Indent < 1:
		return invalid("json.indent must be positive, got %d", c.JSON.Indent)
	case c.YAML.Indent < 2:
		return invalid("yaml.indent must be at least 2, got %d", c.YAML.Indent)
	case c.XML.Indent < 1:
		return invalid("xml.indent must be positive, got %d", c.XML.Indent)
	case !formatter.IsValidXMLName(c.XML.RootTag):
		return invalid("xml.root_tag %q is not a valid XML element name", c.XML.RootTag)
	case !formatter.IsValidXMLText(c.XML.NullText):
		return invalid("xml.null_text contains characters that XML 1.0 cannot represent")
	case !c.XML.KeyStyle.Valid():
		return invalid("xml.key_style %q is not one of %v", c.XML.KeyStyle, formatter.KeyStyles)
	case !c.XML.SequencePolicy.Valid():
		return invalid("xml.sequence_policy %q must be error or repeat", c.XML.SequencePolicy)
	case !c.XML.DuplicatePolicy.Valid():
		return invalid("xml.duplicate_policy %q must be overwrite or collect", c.XML.DuplicatePolicy)
	case c.Limits.MaxNodes < 1:
		return invalid("limits.max_nodes must be positive, got %d", c.Limits.MaxNodes)
	case c.Batch.Jobs < 0:
		return invalid("batch.jobs must not be negative, got %d", c.Batch.Jobs)
	}
	for key, name := range c.XML.KeyMappings {
		if !formatter.IsValidXMLName(name) {
			return invalid("xml.key_mappings[%q] = %q is not a valid XML element name", key, name)
		}
	}
	return nil
}

// ConverterOptions translates the configuration into converter options
func (c *Config) ConverterOptions(logger converter.Logger) []converter.Option {
	opts := []converter.Option{
		converter.WithLogger(logger),
		converter.WithJSONIndent(c.JSON.Indent),
		converter.WithYAMLIndent(c.YAML.Indent),
		converter.WithXMLIndent(c.XML.Indent),
		converter.WithRootTag(c.XML.RootTag),
		converter.WithNullText(c.XML.NullText),
		converter.WithKeyStyle(c.XML.KeyStyle),
		converter.WithKeyMappings(c.XML.KeyMappings),
		converter.WithSequencePolicy(c.XML.SequencePolicy),
		converter.WithDuplicatePolicy(c.XML.DuplicatePolicy),
		converter.WithMaxNodes(c.Limits.MaxNodes),
	}
	if c.Batch.Jobs > 0 {
		opts = append(opts, converter.WithBatchJobs(c.Batch.Jobs))
	}
	return opts
}

// Overrides holds settings given on the command line. Zero values leave the
// configured value unchanged.
type Overrides struct {
	Indent          int
	RootTag         string
	NullText        *string
	KeyStyle        formatter.KeyStyle
	SequencePolicy  analyzer.SequencePolicy
	DuplicatePolicy parser.DuplicatePolicy
	MaxNodes        int
	Jobs            int
	OutDir          string
	Debug           bool
}

// Apply copies the set overrides into c. Indent applies to every output format.
func (o Overrides) Apply(c *Config) {
	if o.Indent > 0 {
		c.JSON.Indent = o.Indent
		c.YAML.Indent = o.Indent
		c.XML.Indent = o.Indent
	}
	if o.RootTag != "" {
		c.XML.RootTag = o.RootTag
	}
	if o.NullText != nil {
		c.XML.NullText = *o.NullText
	}
	if o.KeyStyle != "" {
		c.XML.KeyStyle = o.KeyStyle
	}
	if o.SequencePolicy != "" {
		c.XML.SequencePolicy = o.SequencePolicy
	}
	if o.DuplicatePolicy != "" {
		c.XML.DuplicatePolicy = o.DuplicatePolicy
	}
	if o.MaxNodes > 0 {
		c.Limits.MaxNodes = o.MaxNodes
	}
	if o.Jobs > 0 {
		c.Batch.Jobs = o.Jobs
	}
	if o.OutDir != "" {
		c.Batch.OutDir = o.OutDir
	}
	// Only an explicit --debug turns debugging on; it never turns it off
	if o.Debug {
		c.Dev.Debug = true
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence: command line over
// config file over defaults
func LoadConfigWithCLI(configPath string, cli Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cli.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
