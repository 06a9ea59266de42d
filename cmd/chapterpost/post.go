package main

import (
	"fmt"
	"os"

	"github.com/mostlysecurity/chapterpost/poster"

	"github.com/urfave/cli/v2"
)

var cmdPost = &cli.Command{
	Name:      "post",
	Usage:     "create a single post",
	ArgsUsage: `<text>`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "link",
			Aliases: []string{"l"},
			Usage:   "URL to attach as a link card",
		},
		&cli.StringSliceFlag{
			Name:  "image",
			Usage: fmt.Sprintf("image file to attach (up to %d)", poster.MaxImages),
		},
		&cli.StringFlag{
			Name:  "alt-text",
			Usage: "alt text applied to every attached image",
		},
	},
	Action: runPost,
}

func runPost(cctx *cli.Context) error {
	ctx := cctx.Context
	text := cctx.Args().First()
	if text == "" && cctx.String("link") == "" && len(cctx.StringSlice("image")) == 0 {
		return fmt.Errorf("need to provide post text as argument")
	}

	p := poster.Post{
		Text:    text,
		Link:    cctx.String("link"),
		Images:  cctx.StringSlice("image"),
		AltText: cctx.String("alt-text"),
	}
	// checked before logging in
	if len(p.Images) > poster.MaxImages {
		return poster.ErrTooManyImages
	}
	if p.Link != "" && len(p.Images) > 0 {
		return poster.ErrLinkWithImages
	}

	logger := configLogger(cctx, os.Stderr)
	c, err := newComposer(ctx, posterConfig(cctx, logger))
	if err != nil {
		return err
	}
	res, err := c.Compose(ctx, p)
	if err != nil {
		return err
	}
	printResult(cctx.App.Writer, p, res)
	return nil
}
