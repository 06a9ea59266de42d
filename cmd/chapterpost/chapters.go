package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mostlysecurity/chapterpost/podcast"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"
)

var cmdChapters = &cli.Command{
	Name:  "chapters",
	Usage: "print the chapter metadata of a podcast file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "podcast audio file with ID3 chapter frames",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "output format: table, markdown, html, json",
			Value:   "table",
		},
	},
	Action: runChapters,
}

func runChapters(cctx *cli.Context) error {
	meta, err := podcast.ReadFile(cctx.String("input"))
	if err != nil {
		return err
	}
	return writeChapters(cctx.App.Writer, meta, cctx.String("format"))
}

func writeChapters(w io.Writer, meta *podcast.Metadata, format string) error {
	if format == "json" {
		b, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
		return nil
	}

	tw := chapterTable(meta)
	var out string
	switch format {
	case "table":
		out = tw.Render()
	case "markdown", "md":
		out = tw.RenderMarkdown()
	case "html":
		out = tw.RenderHTML()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	fmt.Fprintln(w, out)
	return nil
}

func chapterTable(meta *podcast.Metadata) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if meta.Title != "" {
		tw.SetTitle(meta.Title)
	}
	tw.AppendHeader(table.Row{"#", "ID", "Start", "End", "Title", "URL"})
	for i, ch := range meta.Ordered() {
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			ch.ID,
			formatOffset(ch.Start),
			formatOffset(ch.End),
			ch.Text,
			ch.URL,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw
}

// Formats a chapter offset as H:MM:SS.
func formatOffset(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%d:%02d:%02d", h, m, d/time.Second)
}
