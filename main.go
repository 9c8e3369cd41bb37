package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/mcncl/konvert/internal/analyzer"
	"github.com/mcncl/konvert/internal/config"
	"github.com/mcncl/konvert/internal/converter"
	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/formatter"
	"github.com/mcncl/konvert/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config          string           `help:"Path to a config file. Defaults to the nearest .konvert.yml." short:"c" type:"path"`
	Debug           bool             `help:"Enable debug logging." short:"d"`
	Version         kong.VersionFlag `help:"Show version information." short:"v"`
	SequencePolicy  string           `help:"How sequences are written to XML: error or repeat." name:"sequence-policy"`
	DuplicatePolicy string           `help:"How repeated XML elements are read: overwrite or collect." name:"duplicate-policy"`
	RootTag         string           `help:"Name of the XML root element." name:"root-tag"`
	NullText        *string          `help:"XML text written for null values." name:"null-text"`
	KeyStyle        string           `help:"Rewrite keys used as XML element names: preserve, snake, kebab, camel or lower_camel." name:"key-style"`
	Indent          int              `help:"Spaces per nesting level for every output format."`

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Convert one file (the default command)."`
	Batch   BatchCmd   `cmd:"" help:"Convert several files to one format."`
}

// App holds what commands need at runtime
type App struct {
	ctx       context.Context
	config    *config.Config
	converter *converter.Converter
	logger    converter.Logger
	stderr    io.Writer
}

// ConvertCmd converts a single file
type ConvertCmd struct {
	Input  string        `arg:"" optional:"" help:"Input file (.json, .yaml, .yml or .xml)." type:"path"`
	Output string        `arg:"" optional:"" help:"Output file. Its extension picks the target format unless --to is given." type:"path"`
	From   format.Format `help:"Input format, overriding the input file extension." short:"f"`
	To     format.Format `help:"Output format, overriding the output file extension." short:"t"`
}

// Run converts Input into Output
func (c *ConvertCmd) Run(app *App) error {
	if c.Input == "" || c.Output == "" {
		return errors.NewInputError("an input file and an output file are required", errors.ErrInvalidFilePath)
	}

	// An unset --from or --to is format.Unknown, which falls back to the extension
	if err := app.converter.ConvertFileAs(c.Input, c.Output, c.From, c.To); err != nil {
		return err
	}
	app.logger.Info("converted", "input", c.Input, "output", c.Output)
	return nil
}

// BatchCmd converts several files concurrently
type BatchCmd struct {
	To     format.Format `help:"Output format for every file." short:"t" required:""`
	OutDir string        `help:"Directory for converted files. Defaults to each input's directory." name:"out-dir" short:"o" type:"path"`
	Jobs   int           `help:"Number of files converted at once. Defaults to the number of CPUs." short:"j"`
	Inputs []string      `arg:"" help:"Files to convert." type:"path"`
}

// Run converts every input, reporting each failure
func (b *BatchCmd) Run(app *App) error {
	results, err := app.converter.ConvertBatch(app.ctx, b.Inputs, b.To, app.config.Batch.OutDir)
	if results == nil && err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(app.stderr, "%s\n", errors.UserFriendlyError(r.Err))
		}
	}
	if failed > 0 {
		return errors.NewOutputError(fmt.Sprintf("%d of %d files failed to convert", failed, len(results)), nil)
	}
	return nil
}

// overrides collects the flags that take precedence over the config file
func (cli *CLI) overrides() config.Overrides {
	return config.Overrides{
		Indent:          cli.Indent,
		RootTag:         cli.RootTag,
		NullText:        cli.NullText,
		KeyStyle:        formatter.KeyStyle(cli.KeyStyle),
		SequencePolicy:  analyzer.SequencePolicy(cli.SequencePolicy),
		DuplicatePolicy: parser.DuplicatePolicy(cli.DuplicatePolicy),
		Jobs:            cli.Batch.Jobs,
		OutDir:          cli.Batch.OutDir,
		Debug:           cli.Debug,
	}
}

// newApp loads the configuration and builds the converter it describes
func newApp(ctx context.Context, cli *CLI, stderr io.Writer) (*App, error) {
	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, cli.overrides())
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Dev.Debug {
		level = slog.LevelDebug
	}
	logger := converter.NewSlogAdapter(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	if configPath != "" {
		logger.Debug("loaded config file", "path", configPath)
	}

	conv, err := converter.New(cfg.ConverterOptions(logger)...)
	if err != nil {
		return nil, errors.NewConfigError("invalid settings", err)
	}

	return &App{
		ctx:       ctx,
		config:    cfg,
		converter: conv,
		logger:    logger,
		stderr:    stderr,
	}, nil
}

// exitStatus carries the status kong asks to exit with after --help or --version
type exitStatus int

// run parses args and executes the selected command, returning the exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer, options ...kong.Option) (code int) {
	defer func() {
		if r := recover(); r != nil {
			status, ok := r.(exitStatus)
			if !ok {
				panic(r)
			}
			code = int(status)
		}
	}()

	var cli CLI
	options = append([]kong.Option{
		kong.Name("konvert"),
		kong.Description("Convert documents between JSON, YAML and XML."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": "konvert version " + Version},
		kong.Exit(func(status int) { panic(exitStatus(status)) }),
	}, options...)

	k, err := kong.New(&cli, options...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	kctx, err := k.Parse(args)
	if err != nil {
		k.Errorf("%s", err)
		fmt.Fprintf(stderr, "\nFor help, run: konvert --help\n")
		return 1
	}

	app, err := newApp(ctx, &cli, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	if err := kctx.Run(app); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
