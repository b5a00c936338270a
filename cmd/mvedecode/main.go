package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravestench/mve/pkg"
	"github.com/gravestench/mve/pkg/logging"
)

const (
	appName    = "mvedecode"
	appVersion = "v0.1.0"
)

func main() {
	inFlag := flag.String("in", "", "frame dump to decode (optionally zstd compressed)")
	outFlag := flag.String("out", "", "directory for the decoded PNG frames")
	logLevelFlag := flag.String("log-level", "", "log level (debug, info, warn, error, critical)")
	rgbaFlag := flag.Bool("rgba", false, "write RGBA PNGs instead of paletted ones")
	maxFramesFlag := flag.Int("max-frames", 0, "stop after this many frames (0 decodes all)")
	versionFlag := flag.Bool("version", false, "show version")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s %s\n", appName, appVersion)
		return
	}

	cfg, err := LoadWithOverrides(LoadOptions{
		Input:     strings.TrimSpace(*inFlag),
		OutputDir: strings.TrimSpace(*outFlag),
		LogLevel:  strings.TrimSpace(*logLevelFlag),
		RGBA:      *rgbaFlag,
		MaxFrames: *maxFramesFlag,
	})
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logging.SetLevelFromString(cfg.LogLevel)

	if err := run(cfg, logging.Default()); err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg *Config, logger *logging.Logger) error {
	f, err := os.Open(cfg.Input)
	if err != nil {
		return err
	}
	defer f.Close()

	rec, err := pkg.Load(f)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Input, err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	written, err := decodeRecording(rec, cfg, logger)
	logger.Info("wrote %d of %d frames (%dx%d) to %s", written, len(rec.Frames), rec.Width, rec.Height, cfg.OutputDir)

	return err
}

// decodeRecording writes one PNG per frame and returns how many were written.
// A frame that fails to decode stops the run; block anomalies only log.
func decodeRecording(rec *pkg.Recording, cfg *Config, logger *logging.Logger) (int, error) {
	dec, err := pkg.NewDecoder(rec.Width, rec.Height, logger)
	if err != nil {
		return 0, err
	}

	palette, err := rec.ColorPalette()
	if err != nil {
		return 0, err
	}

	dec.SetPalette(palette)

	written := 0

	for idx, fr := range rec.Frames {
		if cfg.MaxFrames > 0 && idx >= cfg.MaxFrames {
			break
		}

		frame, stats, err := dec.DecodeWithRemaining(fr.OpMap, fr.Payload, fr.Remaining)
		if err != nil {
			return written, err
		}

		if len(stats.Anomalies) > 0 {
			logger.Warn("frame %d: %d damaged blocks", idx, len(stats.Anomalies))
		}

		logger.Debug("frame %d: %d opcodes, %d payload bytes", idx, stats.Opcodes, stats.Consumed)

		var img image.Image = frame.Paletted()
		if cfg.RGBA {
			img = frame.RGBA()
		}

		name := filepath.Join(cfg.OutputDir, fmt.Sprintf("frame_%04d.png", idx))
		if err := writePNG(name, img); err != nil {
			return written, err
		}

		written++
	}

	return written, nil
}

func writePNG(name string, img image.Image) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}

	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	return out.Close()
}
