// Package main provides the CLI entry point for bagannotate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/bagannotate/pkg/adapters/smartencoder"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "bagannotate",
		Usage:   l10n.T("Convert ROS bag image topics to video with annotation boxes"),
		Version: version,
		Description: l10n.T("bagannotate reads an image topic from a ROS bag, maps a tab-delimited box table onto its frames and writes an MP4 video."),
		Commands: []*cli.Command{
			convertCommand(),
			infoCommand(),
			lookupCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("bagannotate version %s", version))
					h264 := l10n.T("not available (ffmpeg not found)")
					if smartencoder.IsH264Available() {
						h264 = l10n.T("available")
					}
					fmt.Fprintln(c.App.Writer, l10n.F("avc1 encoder: %s", h264))
					return nil
				},
			},
		},
	}
}
