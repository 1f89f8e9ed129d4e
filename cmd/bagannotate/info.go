package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/bagannotate/pkg/adapters/rosbag"
	"github.com/user/bagannotate/pkg/stages/metadata"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     l10n.T("Show the topics of a bag"),
		ArgsUsage: "<bag>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yaml", Usage: l10n.T("Print the summary as YAML")},
		},
		Action: runInfo,
	}
}

func runInfo(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New(l10n.T("bag argument is required"))
	}

	bag, err := rosbag.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer bag.Close()

	out := c.App.Writer
	if c.Bool("yaml") {
		data, err := bag.Info()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	s := bag.Summarize()
	fmt.Fprintf(out, "%-12s %s\n", l10n.T("path:"), s.Path)
	fmt.Fprintf(out, "%-12s %.1f\n", l10n.T("version:"), s.Version)
	fmt.Fprintf(out, "%-12s %.3f s\n", l10n.T("duration:"), s.Duration)
	if s.Messages > 0 {
		fmt.Fprintf(out, "%-12s %s\n", l10n.T("start:"), formatStamp(bag.StartTime()))
		fmt.Fprintf(out, "%-12s %s\n", l10n.T("end:"), formatStamp(bag.EndTime()))
	}
	fmt.Fprintf(out, "%-12s %s\n", l10n.T("size:"), humanize.Bytes(uint64(s.Size)))
	fmt.Fprintf(out, "%-12s %s\n", l10n.T("messages:"), humanize.Comma(int64(s.Messages)))
	fmt.Fprintf(out, "%-12s %s\n\n", l10n.T("compression:"), s.Compression)

	rows := make([][]string, 0, len(s.Topics))
	for _, t := range s.Topics {
		image := ""
		if metadata.IsImageType(t.Type) {
			image = "*"
		}
		rows = append(rows, []string{
			t.Topic,
			t.Type,
			strconv.Itoa(t.Messages),
			fmt.Sprintf("%.2f", t.Frequency),
			image,
		})
	}
	headers := []string{l10n.T("Topic"), l10n.T("Type"), l10n.T("Messages"), l10n.T("Frequency (Hz)"), l10n.T("Image")}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}, 0))

	conns := bag.Connections()
	connRows := make([][]string, 0, len(conns))
	for _, c := range conns {
		connRows = append(connRows, []string{strconv.FormatUint(uint64(c.ID), 10), c.Topic, c.Type, c.MD5Sum})
	}
	fmt.Fprintln(out)
	connHeaders := []string{l10n.T("Connection"), l10n.T("Topic"), l10n.T("Type"), "MD5"}
	fmt.Fprintln(out, renderTable(connHeaders, connRows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}, 0))
	return nil
}

func formatStamp(t time.Time) string {
	return fmt.Sprintf("%s (%.2f)", t.UTC().Format("2006-01-02 15:04:05.000 UTC"), float64(t.UnixNano())/1e9)
}
