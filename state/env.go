// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stylegen/config"
	"stylegen/css"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by render and purge subcommands
	Overwrite bool

	start         time.Time
	restoreStdLog func()
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// NewStyleSheet creates stylesheet honoring configured normalize and
// preamble settings. Extra options are applied last.
func (e *LocalEnv) NewStyleSheet(opts ...css.Option) *css.StyleSheet {
	var base []css.Option
	if e.Cfg != nil {
		base = append(base,
			css.WithNormalize(e.Cfg.Stylesheet.Normalize),
			css.WithPreamble(e.Cfg.Stylesheet.Preamble))
	}
	return css.NewStyleSheet(e.Log, append(base, opts...)...)
}

// Safelist returns classes configured to survive purge.
func (e *LocalEnv) Safelist() css.ClassSet {
	if e.Cfg == nil {
		return css.NewClassSet()
	}
	return css.NewClassSet(e.Cfg.Stylesheet.Safelist...)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
