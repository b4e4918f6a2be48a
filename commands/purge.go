package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"stylegen/archive"
	"stylegen/css"
	"stylegen/markup"
	"stylegen/state"
)

// PurgeResult describes purge outcome.
type PurgeResult struct {
	CSS   string
	Pages int
	Used  css.ClassSet
}

type purgeOptions struct {
	charset string
}

type PurgeOption func(*purgeOptions)

// WithCharset decodes pages from named IANA character set instead of UTF-8.
func WithCharset(name string) PurgeOption {
	return func(o *purgeOptions) { o.charset = name }
}

func pageDecoder(name string) (func(io.Reader) io.Reader, error) {
	if name == "" {
		return func(r io.Reader) io.Reader { return r }, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q is not supported", name)
	}
	return func(r io.Reader) io.Reader { return enc.NewDecoder().Reader(r) }, nil
}

// PurgeSheet imports stylesheet file and renders subset used by pages found
// under source plus configured safelist.
func PurgeSheet(ctx context.Context, env *state.LocalEnv, stylesheet, source string, opts ...PurgeOption) (*PurgeResult, error) {
	var o purgeOptions
	for _, opt := range opts {
		opt(&o)
	}
	decode, err := pageDecoder(o.charset)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(stylesheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}

	var parseOpts []css.Option
	if env.Cfg != nil {
		parseOpts = append(parseOpts, css.WithPreamble(env.Cfg.Stylesheet.Preamble))
	}
	sheet, err := css.NewParser(env.Log).Parse(data, filepath.Base(stylesheet), parseOpts...)
	if err != nil {
		return nil, err
	}

	res := &PurgeResult{Used: env.Safelist()}
	err = archive.WalkSources(ctx, source, archive.IsPage, func(name string, r io.Reader) error {
		before := res.Used.Len()
		if err := markup.ScanHTMLInto(decode(r), res.Used); err != nil {
			return fmt.Errorf("unable to scan %s: %w", name, err)
		}
		res.Pages++
		env.Log.Debug("Page scanned", zap.String("page", name), zap.Int("new classes", res.Used.Len()-before))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Pages == 0 {
		env.Log.Warn("Nothing to scan, no pages found", zap.String("source", source))
	}

	if res.CSS, err = sheet.RenderSubset(res.Used); err != nil {
		return nil, fmt.Errorf("unable to render subset: %w", err)
	}
	return res, nil
}

// Purge is purge subcommand: STYLESHEET SOURCE [DESTINATION].
func Purge(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	stylesheet, source := cmd.Args().Get(0), cmd.Args().Get(1)
	if stylesheet == "" || source == "" {
		return errors.New("both stylesheet and page source must be specified")
	}
	if cmd.Args().Len() > 3 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[3:]))
	}
	env.Overwrite = cmd.Bool("overwrite")

	res, err := PurgeSheet(ctx, env, stylesheet, source, WithCharset(cmd.String("charset")))
	if err != nil {
		return err
	}
	env.Log.Info("Stylesheet purged",
		zap.String("stylesheet", stylesheet),
		zap.Int("pages", res.Pages),
		zap.Int("classes", res.Used.Len()),
		zap.Int("bytes", len(res.CSS)))
	env.Rpt.StoreData("purge/classes.txt", []byte(fmt.Sprintln(res.Used.Sorted())))
	env.Rpt.StoreData("purge/"+filepath.Base(stylesheet), []byte(res.CSS))

	return writeOutput(env, os.Stdout, cmd.Args().Get(2), res.CSS)
}
