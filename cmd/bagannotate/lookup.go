package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/bagannotate/pkg/adapters/imagecodec"
	"github.com/user/bagannotate/pkg/adapters/nullsink"
	"github.com/user/bagannotate/pkg/adapters/osfilesystem"
	"github.com/user/bagannotate/pkg/adapters/rosbag"
	"github.com/user/bagannotate/pkg/annotation"
	"github.com/user/bagannotate/pkg/orchestrator"
	"github.com/user/bagannotate/pkg/stages/extract"
	"github.com/user/bagannotate/pkg/stages/metadata"
)

func lookupCommand() *cli.Command {
	flags := inputFlags()
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:        "lookup",
		Usage:       l10n.T("Print the boxes shown at playback positions"),
		Description: l10n.T("Map each playback position in milliseconds to a frame and print the boxes attached to that frame."),
		ArgsUsage:   "<bag> <position_ms>...",
		Flags:       flags,
		Action:      runLookup,
	}
}

func runLookup(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New(l10n.T("bag and at least one position are required"))
	}

	positions := make([]int64, 0, c.NArg()-1)
	for _, arg := range c.Args().Slice()[1:] {
		p, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", l10n.F("invalid position %q", arg), err)
		}
		positions = append(positions, p)
	}

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)
	fs := osfilesystem.New()
	sink := nullsink.New()

	bag, err := rosbag.Open(cfg.BagPath)
	if err != nil {
		return err
	}
	defer bag.Close()

	orch := orchestrator.New(
		metadata.NewStage(log),
		extract.NewStage(imagecodec.New(), sink, log),
		nil,
		nil,
		annotation.NewLoader(fs, log),
		sink,
		log,
	)

	session, _, result, err := orch.Prepare(c.Context, bag, cfg.ToOrchestratorConfig(cfg.Codec))
	if err != nil {
		return err
	}
	if result.AnnotationError != "" {
		fmt.Fprintln(c.App.ErrWriter, l10n.F("Annotations not loaded: %s", result.AnnotationError))
	}

	var rows [][]string
	for _, pos := range positions {
		group, err := session.Seek(pos)
		if err != nil {
			rows = append(rows, []string{strconv.FormatInt(pos, 10), "-", "", "", "", "", "", err.Error()})
			continue
		}
		frame := strconv.Itoa(group.FrameIndex)
		if group.Empty() {
			rows = append(rows, []string{strconv.FormatInt(pos, 10), frame, "", "", "", "", "", ""})
			continue
		}
		for i, id := range group.BoxIDs {
			r := group.Params[i]
			rows = append(rows, []string{
				strconv.FormatInt(pos, 10),
				frame,
				strconv.Itoa(id),
				strconv.Itoa(r.X),
				strconv.Itoa(r.Y),
				strconv.Itoa(r.Width),
				strconv.Itoa(r.Height),
				fmt.Sprintf("%.3f s", group.Timestamps[i]),
			})
		}
	}

	headers := []string{l10n.T("Position (ms)"), l10n.T("Frame"), l10n.T("Box ID"), "X", "Y", "W", "H", l10n.T("Detail")}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	fmt.Fprintln(c.App.Writer, renderTable(headers, rows, aligns, 1))
	return nil
}
