package main

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/bagannotate/pkg/adapters/filesink"
	"github.com/user/bagannotate/pkg/adapters/ggrenderer"
	"github.com/user/bagannotate/pkg/adapters/imagecodec"
	"github.com/user/bagannotate/pkg/adapters/logger"
	"github.com/user/bagannotate/pkg/adapters/nullsink"
	"github.com/user/bagannotate/pkg/adapters/osfilesystem"
	"github.com/user/bagannotate/pkg/adapters/rosbag"
	"github.com/user/bagannotate/pkg/adapters/smartencoder"
	"github.com/user/bagannotate/pkg/annotation"
	"github.com/user/bagannotate/pkg/config"
	"github.com/user/bagannotate/pkg/orchestrator"
	"github.com/user/bagannotate/pkg/ports"
	"github.com/user/bagannotate/pkg/stages/encode"
	"github.com/user/bagannotate/pkg/stages/extract"
	"github.com/user/bagannotate/pkg/stages/metadata"
	"github.com/user/bagannotate/pkg/stages/overlay"
	"github.com/user/bagannotate/pkg/summarizer"
)

// Flag categories, translated when the flags are built.
const (
	categoryInput   = "Input"
	categoryOutput  = "Output"
	categoryVideo   = "Video and Quality"
	categoryOverlay = "Overlay"
	categoryDebug   = "Debug"
	categoryLogging = "Logging"
)

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T(categoryInput)},
		&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: l10n.T("Image topic (default: the only image topic in the bag)"), Category: l10n.T(categoryInput)},
		&cli.StringFlag{Name: "annotations", Aliases: []string{"a"}, Usage: l10n.T("Tab-delimited box table with a Rect_id column"), Category: l10n.T(categoryInput)},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(categoryLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(categoryLogging)},
	}
}

func convertCommand() *cli.Command {
	flags := inputFlags()
	flags = append(flags,
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output video path (.mp4, .m4v or .mov)"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T(categoryOutput)},

		&cli.StringFlag{Name: "codec", Usage: l10n.T("Codec tag (jpeg or avc1)"), Category: l10n.T(categoryVideo)},
		&cli.IntFlag{Name: "jpeg-quality", Usage: l10n.T("JPEG quality for the jpeg codec (1-100)"), Category: l10n.T(categoryVideo)},
		&cli.IntFlag{Name: "crf", Usage: l10n.T("CRF for the avc1 codec (0-51, lower is better)"), Category: l10n.T(categoryVideo)},
		&cli.IntFlag{Name: "bitrate", Usage: l10n.T("Target bitrate in kbps for the avc1 codec (0 = encoder default)"), Category: l10n.T(categoryVideo)},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to the ffmpeg executable"), Category: l10n.T(categoryVideo)},
		&cli.BoolFlag{Name: "no-fallback", Usage: l10n.T("Fail instead of falling back to jpeg when ffmpeg is missing"), Category: l10n.T(categoryVideo)},

		&cli.BoolFlag{Name: "overlay", Usage: l10n.T("Draw annotation boxes into the video"), Category: l10n.T(categoryOverlay)},
		&cli.StringFlag{Name: "overlay-color", Usage: l10n.T("Box color (hex, e.g., #c80000)"), Category: l10n.T(categoryOverlay)},
		&cli.Float64Flag{Name: "overlay-width", Usage: l10n.T("Box line width in pixels"), Category: l10n.T(categoryOverlay)},
		&cli.BoolFlag{Name: "show-ids", Usage: l10n.T("Label each box with its id"), Category: l10n.T(categoryOverlay)},
		&cli.IntFlag{Name: "workers", Usage: l10n.T("Overlay workers (0 = number of CPUs)"), Category: l10n.T(categoryOverlay)},

		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T(categoryDebug)},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T(categoryDebug)},
	)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:        "convert",
		Usage:       l10n.T("Convert a bag image topic to MP4 video"),
		Description: l10n.T("Read every image of the topic, attach the annotation boxes to their frames and write an MP4 video."),
		ArgsUsage:   "<bag>",
		Flags:       flags,
		Action:      runConvert,
	}
}

// buildConfig loads the config file (if any) and applies flag overrides.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.Args().Present() {
		cfg.BagPath = c.Args().First()
	}

	stringFlags := map[string]*string{
		"topic":         &cfg.Topic,
		"annotations":   &cfg.AnnotationsPath,
		"output":        &cfg.OutputPath,
		"summary":       &cfg.SummaryPath,
		"codec":         &cfg.Codec,
		"ffmpeg-path":   &cfg.FFmpegPath,
		"overlay-color": &cfg.OverlayColor,
		"debug-dir":     &cfg.DebugDir,
		"log-level":     &cfg.LogLevel,
	}
	for name, dst := range stringFlags {
		if isSet(c, name) {
			*dst = c.String(name)
		}
	}

	intFlags := map[string]*int{
		"jpeg-quality": &cfg.JPEGQuality,
		"crf":          &cfg.CRF,
		"bitrate":      &cfg.Bitrate,
		"workers":      &cfg.Workers,
	}
	for name, dst := range intFlags {
		if isSet(c, name) {
			*dst = c.Int(name)
		}
	}

	boolFlags := map[string]*bool{
		"overlay":  &cfg.Overlay,
		"show-ids": &cfg.ShowIDs,
		"debug":    &cfg.Debug,
	}
	for name, dst := range boolFlags {
		if isSet(c, name) {
			*dst = c.Bool(name)
		}
	}

	if isSet(c, "overlay-width") {
		cfg.OverlayWidth = c.Float64("overlay-width")
	}
	if isSet(c, "no-fallback") {
		cfg.AllowFallback = !c.Bool("no-fallback")
	}
	if isSet(c, "quiet") && c.Bool("quiet") {
		cfg.LogLevel = "quiet"
	}

	return cfg, nil
}

// isSet reports whether the command defines name and the user set it.
func isSet(c *cli.Context, name string) bool {
	for _, f := range c.Command.Flags {
		for _, n := range f.Names() {
			if n == name {
				return c.IsSet(name)
			}
		}
	}
	return false
}

func newLogger(level string) ports.Logger {
	if level == "quiet" {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(level))
}

func runConvert(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	encoder, encInfo, err := smartencoder.New(cfg.Codec, smartencoder.Options{
		FFmpegPath:    cfg.FFmpegPath,
		AllowFallback: cfg.AllowFallback,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	bag, err := rosbag.Open(cfg.BagPath)
	if err != nil {
		return err
	}
	defer bag.Close()

	// Create stages
	orch := orchestrator.New(
		metadata.NewStage(log),
		extract.NewStage(imagecodec.New(), sink, log),
		overlay.NewStage(renderer, sink, log, cfg.Workers),
		encode.NewStage(encoder, renderer, fs, log),
		annotation.NewLoader(fs, log),
		sink,
		log,
	)

	log.Info(l10n.F("Converting %s to %s (%s)...", cfg.BagPath, cfg.OutputPath, encInfo.FourCC))

	result, _, err := orch.Run(c.Context, bag, cfg.ToOrchestratorConfig(encInfo.FourCC))
	if err != nil {
		return err
	}

	if cfg.SummaryPath != "" {
		summary := buildSummary(cfg, result, encInfo)
		formatter := summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		)
		if err := summarizer.NewWriter(formatter, fs).Write(cfg.SummaryPath, summary); err != nil {
			log.Warn(l10n.F("Failed to write summary: %s", err))
		} else {
			log.Info(l10n.F("Summary saved to %s", cfg.SummaryPath))
		}
	}

	return nil
}

func buildSummary(cfg config.Config, result orchestrator.RunResult, encInfo smartencoder.Info) *summarizer.Summary {
	return summarizer.NewBuilder().
		WithSource(summarizer.SourceInfo{
			BagPath:      cfg.BagPath,
			Topic:        result.Topic,
			MessageType:  result.MessageType,
			MessageCount: result.MessageCount,
			DurationMs:   result.DurationMs,
			Framerate:    result.Framerate,
		}).
		WithFrames(result.FrameCount, result.Skipped).
		WithAnnotations(summarizer.AnnotationInfo{
			Path:            cfg.AnnotationsPath,
			Error:           result.AnnotationError,
			Boxes:           result.Boxes,
			PopulatedFrames: result.PopulatedFrames,
			Burned:          result.Annotated,
		}).
		WithVideo(summarizer.VideoInfo{
			OutputPath:      cfg.OutputPath,
			FourCC:          result.FourCC,
			RequestedFourCC: encInfo.RequestedFourCC,
			Backend:         string(encInfo.Backend),
			FallbackUsed:    encInfo.FallbackUsed,
			FrameCount:      result.VideoFrames,
			Width:           result.VideoWidth,
			Height:          result.VideoHeight,
			DurationMs:      result.VideoDurationMs,
			FileSize:        result.VideoFileSize,
		}).
		Build()
}
