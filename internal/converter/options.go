package converter

import (
	"fmt"
	"runtime"

	"github.com/mcncl/konvert/internal/analyzer"
	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/formatter"
	"github.com/mcncl/konvert/internal/generator"
	"github.com/mcncl/konvert/internal/parser"
)

// Option configures a Converter.
type Option func(*convertConfig) error

// convertConfig holds everything New assembles into a Converter.
type convertConfig struct {
	logger    Logger
	decode    parser.Options
	encode    generator.Options
	batchJobs int
}

func defaultConfig() convertConfig {
	return convertConfig{
		logger:    NopLogger{},
		decode:    parser.DefaultOptions(),
		encode:    generator.DefaultOptions(),
		batchJobs: runtime.GOMAXPROCS(0),
	}
}

func applyOptions(opts ...Option) (convertConfig, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return convertConfig{}, err
		}
	}
	return cfg, nil
}

func invalidOption(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errors.ErrInvalidConfig}, args...)...)
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l Logger) Option {
	return func(cfg *convertConfig) error {
		if l == nil {
			l = NopLogger{}
		}
		cfg.logger = l
		return nil
	}
}

// WithSequencePolicy sets how Sequences are written to XML.
func WithSequencePolicy(p analyzer.SequencePolicy) Option {
	return func(cfg *convertConfig) error {
		if !p.Valid() {
			return invalidOption("unknown sequence policy %q (expected error or repeat)", p)
		}
		cfg.encode.Sequences = p
		return nil
	}
}

// WithDuplicatePolicy sets how repeated sibling XML elements are decoded.
func WithDuplicatePolicy(p parser.DuplicatePolicy) Option {
	return func(cfg *convertConfig) error {
		if !p.Valid() {
			return invalidOption("unknown duplicate policy %q (expected overwrite or collect)", p)
		}
		cfg.decode.Duplicates = p
		return nil
	}
}

// WithRootTag sets the name of the XML wrapper element.
func WithRootTag(tag string) Option {
	return func(cfg *convertConfig) error {
		if !formatter.IsValidXMLName(tag) {
			return invalidOption("root tag %q is not a valid XML element name", tag)
		}
		cfg.encode.RootTag = tag
		return nil
	}
}

// WithNullText sets the XML text written for Null values.
func WithNullText(text string) Option {
	return func(cfg *convertConfig) error {
		if !formatter.IsValidXMLText(text) {
			return invalidOption("null text %q contains characters that XML 1.0 cannot represent", text)
		}
		cfg.encode.NullText = text
		return nil
	}
}

// WithKeyStyle rewrites mapping keys before they become XML element names.
func WithKeyStyle(style formatter.KeyStyle) Option {
	return func(cfg *convertConfig) error {
		if !style.Valid() {
			return invalidOption("unknown key style %q", style)
		}
		cfg.encode.KeyStyle = style
		return nil
	}
}

// WithKeyMappings names the XML elements of specific keys. Mapped names bypass the
// key style.
func WithKeyMappings(mappings map[string]string) Option {
	return func(cfg *convertConfig) error {
		for key, name := range mappings {
			if !formatter.IsValidXMLName(name) {
				return invalidOption("mapping for key %q: %q is not a valid XML element name", key, name)
			}
		}
		cfg.encode.KeyMappings = mappings
		return nil
	}
}

// WithJSONIndent sets the number of spaces per JSON nesting level.
func WithJSONIndent(n int) Option {
	return func(cfg *convertConfig) error {
		if n < 1 {
			return invalidOption("json indent must be positive, got %d", n)
		}
		cfg.encode.JSONIndent = n
		return nil
	}
}

// WithYAMLIndent sets the number of spaces per YAML nesting level.
func WithYAMLIndent(n int) Option {
	return func(cfg *convertConfig) error {
		if n < 2 {
			return invalidOption("yaml indent must be at least 2, got %d", n)
		}
		cfg.encode.YAMLIndent = n
		return nil
	}
}

// WithXMLIndent sets the number of spaces per XML nesting level.
func WithXMLIndent(n int) Option {
	return func(cfg *convertConfig) error {
		if n < 1 {
			return invalidOption("xml indent must be positive, got %d", n)
		}
		cfg.encode.XMLIndent = n
		return nil
	}
}

// WithMaxNodes bounds how many values a decoded document may expand to.
func WithMaxNodes(n int) Option {
	return func(cfg *convertConfig) error {
		if n < 1 {
			return invalidOption("max nodes must be positive, got %d", n)
		}
		cfg.decode.MaxNodes = n
		return nil
	}
}

// WithBatchJobs limits how many files ConvertBatch converts at once.
func WithBatchJobs(n int) Option {
	return func(cfg *convertConfig) error {
		if n < 1 {
			return invalidOption("batch jobs must be positive, got %d", n)
		}
		cfg.batchJobs = n
		return nil
	}
}
