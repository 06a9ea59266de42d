package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/mostlysecurity/chapterpost/embed"
	"github.com/mostlysecurity/chapterpost/poster"
	"github.com/mostlysecurity/chapterpost/util"
	"github.com/mostlysecurity/chapterpost/util/svcutil"

	"github.com/adrg/xdg"
	"github.com/carlmjohnson/versioninfo"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const defaultConfigFile = "config.env"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// Flags record env lookups on themselves when applied, so each app gets fresh ones.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "dotenv file with ATP_* settings",
			Value:   defaultConfigFile,
		},
		&cli.StringFlag{
			Name:    "pds-host",
			Usage:   "method, hostname, and port of PDS instance",
			Value:   poster.DefaultHost,
			EnvVars: []string{"ATP_PDS_HOST"},
		},
		&cli.StringFlag{
			Name:    "handle",
			Usage:   "for PDS login",
			EnvVars: []string{"ATP_AUTH_HANDLE"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "for PDS login (use an app password)",
			EnvVars: []string{"ATP_AUTH_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "user-agent",
			Usage:   "User-Agent for link preview fetches and PDS requests",
			Value:   embed.DefaultUserAgent,
			EnvVars: []string{"CHAPTERPOST_USER_AGENT"},
		},
		&cli.StringSliceFlag{
			Name:    "lang",
			Usage:   "BCP-47 language tag for posts (repeatable)",
			EnvVars: []string{"CHAPTERPOST_LANGS"},
		},
		&cli.BoolFlag{
			Name:    "public-only-fetch",
			Usage:   "refuse link preview fetches to private or reserved addresses",
			Value:   true,
			EnvVars: []string{"CHAPTERPOST_PUBLIC_ONLY_FETCH"},
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"d"},
			Usage:   "print posts instead of creating them",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"CHAPTERPOST_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "chapterpost",
		Usage:   "post podcast chapter links to Bluesky",
		Version: versioninfo.Short(),
		Flags:   globalFlags(),
		Before:  loadConfigFile,
		Commands: []*cli.Command{
			cmdPublish,
			cmdPost,
			cmdChapters,
		},
	}
}

// Finds the dotenv file to load. An explicit --config must exist; the
// default falls back to $XDG_CONFIG_HOME/chapterpost/config.env and may be
// absent altogether.
func configPath(cctx *cli.Context) (string, error) {
	path := cctx.String("config")
	if cctx.IsSet("config") {
		return path, nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	found, err := xdg.SearchConfigFile("chapterpost/" + defaultConfigFile)
	if err != nil {
		return "", nil
	}
	return found, nil
}

// Loads the dotenv config file. Its values override the shell environment;
// flags given on the command line override both.
func loadConfigFile(cctx *cli.Context) error {
	path, err := configPath(cctx)
	if err != nil || path == "" {
		return err
	}

	shell := make(map[string]string)
	for _, f := range cctx.App.Flags {
		if ef, ok := f.(interface{ GetEnvVars() []string }); ok {
			if env, v, ok := firstEnv(ef.GetEnvVars()); ok {
				shell[f.Names()[0]] = env + "=" + v
			}
		}
	}

	if err := godotenv.Overload(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("loading config %s: %w", path, err)
	}

	// flags were parsed before the file was read; pick up what it provided
	for _, f := range cctx.App.Flags {
		ef, ok := f.(interface{ GetEnvVars() []string })
		if !ok {
			continue
		}
		name := f.Names()[0]
		env, v, ok := firstEnv(ef.GetEnvVars())
		if !ok || env+"="+v == shell[name] {
			continue
		}
		if cctx.IsSet(name) && !fromShell(cctx, f, shell[name]) {
			continue
		}
		if err := cctx.Set(name, v); err != nil {
			return fmt.Errorf("%s from %s: %w", env, path, err)
		}
	}
	return nil
}

func firstEnv(vars []string) (string, string, bool) {
	for _, env := range vars {
		if v, ok := os.LookupEnv(env); ok {
			return env, v, true
		}
	}
	return "", "", false
}

// Reports whether a set flag holds the value the shell environment gave it
// (recorded as "NAME=value"), rather than one from the command line.
func fromShell(cctx *cli.Context, f cli.Flag, shellEnv string) bool {
	_, v, ok := strings.Cut(shellEnv, "=")
	if !ok {
		return false
	}
	name := f.Names()[0]
	switch f.(type) {
	case *cli.BoolFlag:
		b, err := strconv.ParseBool(v)
		return err == nil && b == cctx.Bool(name)
	case *cli.StringSliceFlag:
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return slices.Equal(parts, cctx.StringSlice(name))
	default:
		return cctx.String(name) == v
	}
}

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	return svcutil.ConfigLogger(cctx.String("log-level"), writer).With("system", "chapterpost")
}

func posterConfig(cctx *cli.Context, logger *slog.Logger) *poster.Config {
	return &poster.Config{
		Host:        strings.TrimSuffix(cctx.String("pds-host"), "/"),
		Handle:      cctx.String("handle"),
		Password:    cctx.String("password"),
		UserAgent:   cctx.String("user-agent"),
		Langs:       cctx.StringSlice("lang"),
		HTTPClient:  util.RobustHTTPClient(),
		FetchClient: util.FetchHTTPClient(cctx.Bool("public-only-fetch")),
		Logger:      logger,
		DryRun:      cctx.Bool("dry-run"),
	}
}

// Logs in and wires the composer. Dry runs skip the login and resolve
// mentions anonymously.
func newComposer(ctx context.Context, cfg *poster.Config) (*poster.Composer, error) {
	if cfg.DryRun {
		return poster.NewComposer(cfg, poster.AnonymousResolver(cfg), nil, nil)
	}
	sess, err := poster.Login(ctx, cfg)
	if err != nil {
		return nil, err
	}
	builder := embed.NewBuilder(cfg.FetchClient, sess, cfg.UserAgent, cfg.Logger)
	return poster.NewComposer(cfg, sess, builder, sess)
}

func printResult(w io.Writer, p poster.Post, res *poster.Result) {
	if res.Ref == nil {
		fmt.Fprintf(w, "Text: %s\n", res.Record.Text)
		if p.Link != "" {
			fmt.Fprintf(w, "URL : %s\n", p.Link)
		}
		for _, img := range p.Images {
			fmt.Fprintf(w, "Image: %s\n", img)
		}
		return
	}
	fmt.Fprintf(w, "%s\t%s\n", res.Ref.Uri, res.Ref.Cid)
	if u, err := util.ParseAtUri(res.Ref.Uri); err == nil {
		fmt.Fprintf(w, "view post at: %s\n", u.PostURL())
	}
}
