// Command unpdf extracts the embedded images of a PDF document into a directory.
//
// Usage:
//
//	unpdf [flags] <document.pdf>
//
// Images are written as extracted_image_<index>.<ext> in discovery order.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/unpdf/internal/config"
	"github.com/JaimeStill/unpdf/internal/document"
	"github.com/JaimeStill/unpdf/internal/images"
	"github.com/JaimeStill/unpdf/internal/output"
	"github.com/JaimeStill/unpdf/pkg/logging"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type options struct {
	input      string
	configPath string
	overlay    config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(execute(ctx, os.Args[1:], os.Stderr))
}

func execute(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "unpdf: %v\n", err)
		}
		return exitUsage
	}

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(stderr, "unpdf: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitFatal
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var (
		opts    options
		extract = &opts.overlay.Extract
		logs    = &opts.overlay.Logging
		level   string
		format  string
	)

	fs := flag.NewFlagSet("unpdf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: unpdf [flags] <document.pdf>\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&extract.OutputDir, "o", "", "output directory (default \"output\")")
	fs.StringVar(&extract.OutputDir, "output", "", "output directory (default \"output\")")
	fs.StringVar(&extract.Format, "f", "", "target format: jpeg, png, jp2k, tiff, bmp or passthrough (default \"jpeg\")")
	fs.StringVar(&extract.Format, "format", "", "target format: jpeg, png, jp2k, tiff, bmp or passthrough (default \"jpeg\")")
	fs.IntVar(&extract.Quality, "q", 0, "JPEG quality 1-100")
	fs.IntVar(&extract.Quality, "quality", 0, "JPEG quality 1-100")
	fs.IntVar(&extract.Workers, "workers", 0, "concurrent re-encoders (default one per CPU)")
	fs.StringVar(&extract.Pages, "pages", "", "page range, for example 1-3,7 (default all pages)")
	fs.StringVar(&extract.Policy, "policy", "", "accepted payloads: auto, encoded or samples (default \"auto\")")
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default config.toml when present)")
	fs.StringVar(&level, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&format, "log-format", "", "log format: text or json")
	fs.StringVar(&logs.File, "log-file", "", "append logs to this file instead of stdout")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("%w: expected one input document, got %d", errUsage, fs.NArg())
	}
	opts.input = fs.Arg(0)

	logs.Level = logging.Level(level)
	logs.Format = logging.Format(format)

	target, err := images.ParseFormat(extract.Format)
	if err != nil {
		return options{}, err
	}
	if extract.Quality != 0 {
		if extract.Format == "" {
			target = images.JPEG(images.DefaultJPEGQuality)
		}
		if _, err := target.WithQuality(extract.Quality); err != nil {
			return options{}, err
		}
	}
	if extract.Workers < 0 {
		return options{}, fmt.Errorf("%w: workers must not be negative", errUsage)
	}
	if _, err := images.ParsePolicy(extract.Policy); err != nil {
		return options{}, err
	}

	return opts, nil
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Apply(&opts.overlay); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if opts.overlay.Extract.Quality != 0 && cfg.Extract.TargetFormat().Kind != images.FormatJPEG {
		return fmt.Errorf("%w: -quality only applies to jpeg, format is %s", errUsage, cfg.Extract.TargetFormat())
	}

	logger, closeLog, err := logging.Open(&cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	doc, err := document.Open(opts.input)
	if err != nil {
		logger.Error("cannot open document", "input", opts.input, "error", err)
		return err
	}
	defer doc.Close()

	sink, err := output.NewDirSink(cfg.Extract.OutputDir, logger)
	if err != nil {
		return err
	}

	runOpts := cfg.Extract.Options()
	sys := images.New(images.Config{Defaults: runOpts}, logger)

	summary, err := sys.Run(ctx, doc, sink, runOpts)
	if err != nil {
		logger.Error("extraction failed", "input", opts.input, "error", err)
		return err
	}

	logger.Info("images written",
		"input", opts.input,
		"output", sink.Root(),
		"written", summary.Written,
		"discovered", summary.Discovered,
	)
	return nil
}
