package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylegen/css"
	"stylegen/presets"
	"stylegen/state"
)

// Presets lists names accepted by render.
var Presets = []string{"grid", "semantic", "utility", "all"}

// spacingUtility produces classes like "m-t-2" and "p-x-1" on 0.25rem steps.
func spacingUtility(class, property string) presets.Utility {
	return presets.Utility{
		Class:    class,
		Variants: [][]any{{"t", "r", "b", "l", "x", "y"}, {0, 1, 2, 3, 4, 6, 8}},
		Rule: func(st *css.Style, values ...any) {
			side, step := values[0].(string), values[1].(int)
			v := css.Rem(float64(step) * 0.25).String()
			if step == 0 {
				v = "0"
			}
			switch side {
			case "x":
				st.Rule(property+"-left", v).Rule(property+"-right", v)
			case "y":
				st.Rule(property+"-top", v).Rule(property+"-bottom", v)
			default:
				sides := map[string]string{"t": "top", "r": "right", "b": "bottom", "l": "left"}
				st.Rule(property+"-"+sides[side], v)
			}
		},
	}
}

// BuildPreset adds named preset styles to sheet.
func BuildPreset(sheet *css.StyleSheet, name string) error {
	switch name {
	case "grid":
		return presets.FlexGrid(sheet, presets.DefaultGrid())
	case "semantic":
		return presets.DefaultSemanticDesign().All(sheet)
	case "utility":
		var err error
		for _, u := range []presets.Utility{spacingUtility("m", "margin"), spacingUtility("p", "padding")} {
			_, er := presets.Define(sheet, u)
			err = multierr.Append(err, er)
		}
		return err
	case "all":
		var err error
		for _, p := range Presets[:len(Presets)-1] {
			err = multierr.Append(err, BuildPreset(sheet, p))
		}
		return err
	}
	return fmt.Errorf("unknown preset %q, expected one of: %s", name, strings.Join(Presets, ", "))
}

// Render is render subcommand: PRESET [DESTINATION].
func Render(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	preset := cmd.Args().Get(0)
	if preset == "" {
		return errors.New("no preset has been specified")
	}
	if !slices.Contains(Presets, preset) {
		return fmt.Errorf("unknown preset %q, expected one of: %s", preset, strings.Join(Presets, ", "))
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	env.Overwrite = cmd.Bool("overwrite")

	sheet := env.NewStyleSheet()
	if err := BuildPreset(sheet, preset); err != nil {
		return err
	}
	text, err := sheet.Render()
	if err != nil {
		return fmt.Errorf("unable to render preset %q: %w", preset, err)
	}
	log.Debug("Preset rendered", zap.String("preset", preset), zap.Int("styles", len(sheet.Styles())), zap.Int("bytes", len(text)))
	env.Rpt.StoreData("render/"+preset+".css", []byte(text))

	return writeOutput(env, os.Stdout, cmd.Args().Get(1), text)
}
