package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"

	"github.com/JaimeStill/unpdf/internal/images"
)

const (
	EnvExtractOutputDir    = "UNPDF_OUTPUT_DIR"
	EnvExtractFormat       = "UNPDF_FORMAT"
	EnvExtractQuality      = "UNPDF_QUALITY"
	EnvExtractWorkers      = "UNPDF_WORKERS"
	EnvExtractPages        = "UNPDF_PAGES"
	EnvExtractMaxImageSize = "UNPDF_MAX_IMAGE_SIZE"
	EnvExtractPolicy       = "UNPDF_POLICY"
)

// ExtractConfig contains the defaults of an extraction run.
type ExtractConfig struct {
	// OutputDir is the directory images are written to. Default: "output"
	OutputDir string `toml:"output_dir"`

	// Format is the target format name. Default: "jpeg"
	Format string `toml:"format"`

	// Quality is the JPEG quality. Zero keeps the format default. It is ignored
	// for other formats.
	Quality int `toml:"quality"`

	// Workers bounds concurrent re-encoding. Zero uses one worker per CPU.
	Workers int `toml:"workers"`

	// Pages is a page range expression. Empty selects every page.
	Pages string `toml:"pages"`

	// MaxImageSize skips embedded images larger than this human readable size.
	// Empty disables the limit.
	MaxImageSize    string `toml:"max_image_size"`
	maxImageSizeVal int64

	// Policy selects which payloads are accepted: auto, encoded or samples.
	// Default: "auto"
	Policy string `toml:"policy"`

	format images.Format
	policy images.Policy
}

// MaxImageSizeBytes returns the parsed image size limit, or zero for no limit.
func (c *ExtractConfig) MaxImageSizeBytes() int64 {
	return c.maxImageSizeVal
}

// TargetFormat returns the parsed target format with the configured quality applied.
func (c *ExtractConfig) TargetFormat() images.Format {
	return c.format
}

// Options returns the run options described by the configuration.
func (c *ExtractConfig) Options() images.Options {
	return images.Options{
		Format:        c.format,
		Workers:       c.Workers,
		Pages:         c.Pages,
		Policy:        c.policy,
		MaxImageBytes: c.maxImageSizeVal,
	}
}

// Finalize applies defaults, loads environment overrides, and validates the extract configuration.
func (c *ExtractConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ExtractConfig) Merge(overlay *ExtractConfig) {
	if overlay.OutputDir != "" {
		c.OutputDir = overlay.OutputDir
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.Quality != 0 {
		c.Quality = overlay.Quality
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.Pages != "" {
		c.Pages = overlay.Pages
	}
	if overlay.MaxImageSize != "" {
		c.MaxImageSize = overlay.MaxImageSize
	}
	if overlay.Policy != "" {
		c.Policy = overlay.Policy
	}
}

func (c *ExtractConfig) loadDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.Format == "" {
		c.Format = string(images.FormatJPEG)
	}
	if c.Policy == "" {
		c.Policy = images.PolicyAuto.String()
	}
}

func (c *ExtractConfig) loadEnv() error {
	if v := os.Getenv(EnvExtractOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvExtractFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvExtractQuality); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvExtractQuality, err)
		}
		c.Quality = q
	}
	if v := os.Getenv(EnvExtractWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvExtractWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvExtractPages); v != "" {
		c.Pages = v
	}
	if v := os.Getenv(EnvExtractMaxImageSize); v != "" {
		c.MaxImageSize = v
	}
	if v := os.Getenv(EnvExtractPolicy); v != "" {
		c.Policy = v
	}
	return nil
}

func (c *ExtractConfig) validate() error {
	format, err := images.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	if c.Quality != 0 && format.Kind == images.FormatJPEG {
		if format, err = format.WithQuality(c.Quality); err != nil {
			return err
		}
	}
	c.format = format

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	if c.policy, err = images.ParsePolicy(c.Policy); err != nil {
		return err
	}

	c.maxImageSizeVal = 0
	if c.MaxImageSize != "" {
		size, err := units.FromHumanSize(c.MaxImageSize)
		if err != nil {
			return fmt.Errorf("invalid max_image_size: %w", err)
		}
		if size <= 0 {
			return fmt.Errorf("max_image_size must be positive")
		}
		c.maxImageSizeVal = size
	}

	return nil
}
