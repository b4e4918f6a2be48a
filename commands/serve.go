package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylegen/css"
	"stylegen/markup"
	"stylegen/state"
	"stylegen/web"
)

const demoScript = `async function greet() {
    const reply = await stylegen.rpc("greet", { name: "world" });
    document.getElementById("greeting").textContent = reply;
}
function ping() {
    stylegen.realtime("ping", { sent: Date.now() });
}
function pong(at) {
    document.getElementById("greeting").textContent = "pong " + at;
}`

type greetArgs struct {
	Name string `json:"name"`
}

type pingArgs struct {
	Sent int64 `json:"sent"`
}

// demoSheet returns site stylesheet: all presets plus card styles.
func demoSheet(env *state.LocalEnv) (*css.StyleSheet, error) {
	sheet := env.NewStyleSheet()
	if err := BuildPreset(sheet, "all"); err != nil {
		return nil, err
	}

	pulse := css.NewAnimation("pulse").
		Start(css.NewStyle().Opacity(1)).
		At(50, css.NewStyle().Opacity(0.6)).
		End(css.NewStyle().Opacity(1))
	if err := sheet.AddAnimation(pulse); err != nil {
		return nil, err
	}

	card := sheet.MustSelect(".card").
		Padding(1.0).
		Rounded(8).
		Shadow(0, 2, 6, css.Black.Transparent(0.8)).
		Transition("box-shadow", css.WithDuration(200*time.Millisecond))
	card.On("hover").Shadow(0, 4, 12, css.Black.Transparent(0.7))
	sheet.MustSelect(".card.featured").Border(2, css.Gold).Animate(pulse, css.WithDuration(2*time.Second), css.WithIterations(0))
	sheet.Media(css.MaxWidth(640)).MustSelect(".card").Padding(0.5)
	return sheet, nil
}

func demoBody() *markup.Element {
	return markup.Main(
		markup.Div(
			markup.Div(markup.H2().Class("text", "large").Text("stylegen")).Class("card", "featured", "span-6"),
			markup.Div(
				markup.P().Class("text").ID("greeting").Text("Press a button"),
				markup.Button().Class("button", "medium", "primary").Text("Greet").On("click", "greet"),
				markup.Button().Class("button", "medium", "success").Text("Ping").On("click", "ping"),
			).Class("card", "span-6"),
		).Class("row"),
	)
}

// DemoApp builds demo web application configured from env.
func DemoApp(env *state.LocalEnv) (*web.App, error) {
	sheet, err := demoSheet(env)
	if err != nil {
		return nil, err
	}

	opts := []web.Option{}
	if cfg := env.Cfg; cfg != nil {
		fade := time.Duration(0)
		if cfg.Server.FadeIn {
			fade = 100 * time.Millisecond
		}
		opts = append(opts,
			web.WithTitle(cfg.Server.Title),
			web.WithFavicon(cfg.Server.Favicon),
			web.WithFadeIn(fade),
			web.WithVersion(cfg.Server.Version))
		if cfg.Server.ShutdownTimeout > 0 {
			opts = append(opts, web.WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout)*time.Second))
		}
	}
	app := web.NewApp(env.Log, opts...)

	web.RPC(app, "greet", func(_ context.Context, args greetArgs) (string, error) {
		name := strings.TrimSpace(args.Name)
		if name == "" {
			name = "stranger"
		}
		return "Hello, " + name + "!", nil
	})
	web.Realtime(app, "ping", func(_ context.Context, clientID string, args pingArgs) error {
		return app.Hub().Invoke(clientID, "pong", time.Now().UnixMilli()-args.Sent)
	})
	for _, ev := range []string{web.EventConnect, web.EventDisconnect} {
		app.On(ev, func(_ context.Context, clientID string) {
			env.Log.Debug("Client event", zap.String("event", ev), zap.String("client", clientID))
		})
	}

	app.View("/", func(*http.Request) (*markup.Document, error) {
		doc := markup.NewDocument("", demoBody())
		if err := doc.Style(markup.StyleResource{Sheet: sheet, Href: "/static/site.css"}); err != nil {
			return nil, err
		}
		if err := doc.Script(markup.ScriptResource{Content: demoScript}); err != nil {
			return nil, err
		}
		return doc, nil
	}, web.WithPWA(nil))

	// same page with only the styles it uses inlined
	app.View("/lite", func(*http.Request) (*markup.Document, error) {
		doc := markup.NewDocument("", demoBody())
		if err := doc.Style(markup.StyleResource{Sheet: sheet, Inline: true, Subset: true}); err != nil {
			return nil, err
		}
		if err := doc.Script(markup.ScriptResource{Content: demoScript}); err != nil {
			return nil, err
		}
		return doc, nil
	})
	return app, nil
}

// Serve is serve subcommand.
func Serve(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	addr := cmd.String("listen")
	if addr == "" && env.Cfg != nil {
		addr = env.Cfg.Server.Listen
	}
	if addr == "" {
		return fmt.Errorf("no listen address configured")
	}

	app, err := DemoApp(env)
	if err != nil {
		return fmt.Errorf("unable to prepare application: %w", err)
	}
	return app.ListenAndServe(ctx, addr)
}
