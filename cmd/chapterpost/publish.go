package main

import (
	"fmt"
	"os"

	"github.com/mostlysecurity/chapterpost/podcast"
	"github.com/mostlysecurity/chapterpost/poster"

	"github.com/urfave/cli/v2"
)

var cmdPublish = &cli.Command{
	Name:  "publish",
	Usage: "post each linked chapter of an episode, then the episode itself",
	Description: "Chapters are read from the CHAP/CTOC frames of --input and posted in table of contents order;\n" +
		"chapters without a URL are skipped. With --podcast-url, a final \"Episode N: title\" post links the episode.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "podcast audio file with ID3 chapter frames",
		},
		&cli.StringFlag{
			Name:    "title",
			Aliases: []string{"t"},
			Usage:   "episode title (defaults to the file's TIT2 frame)",
		},
		&cli.IntFlag{
			Name:    "episode",
			Aliases: []string{"e"},
			Usage:   "episode number",
		},
		&cli.StringFlag{
			Name:    "podcast-url",
			Aliases: []string{"p"},
			Usage:   "episode URL for the announcement post",
		},
	},
	Action: runPublish,
}

func runPublish(cctx *cli.Context) error {
	ctx := cctx.Context
	logger := configLogger(cctx, os.Stderr)

	var posts []poster.Post
	title := cctx.String("title")

	if path := cctx.String("input"); path != "" {
		meta, err := podcast.ReadFile(path)
		if err != nil {
			return err
		}
		if title == "" {
			title = meta.Title
		}
		linked := meta.Linked()
		logger.Info("read chapters", "file", path, "chapters", len(meta.Chapters), "linked", len(linked))
		for _, ch := range linked {
			posts = append(posts, poster.Post{Text: ch.Text, Link: ch.URL})
		}
	}

	// validated up front so a bad announcement does not follow a run of chapter posts
	if podcastURL := cctx.String("podcast-url"); podcastURL != "" {
		text, err := podcast.EpisodeTitle(title, cctx.Int("episode"))
		if err != nil {
			return err
		}
		posts = append(posts, poster.Post{Text: text, Link: podcastURL})
	} else if title == "" {
		return podcast.ErrMissingTitle
	}

	if len(posts) == 0 {
		logger.Warn("nothing to post")
		return nil
	}

	c, err := newComposer(ctx, posterConfig(cctx, logger))
	if err != nil {
		return err
	}

	failed := 0
	for i, p := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := c.Compose(ctx, p)
		if err != nil {
			logger.Error("post failed", "index", i, "text", p.Text, "link", p.Link, "err", err)
			failed++
			continue
		}
		printResult(cctx.App.Writer, p, res)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d posts failed", failed, len(posts))
	}
	return nil
}
