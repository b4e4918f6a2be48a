// Package commands implements program subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"stylegen/state"
)

// writeOutput writes text to dst or to out when dst is empty. Existing files
// are replaced only with overwrite.
func writeOutput(env *state.LocalEnv, out io.Writer, dst, text string) error {
	if dst == "" {
		_, err := io.WriteString(out, text)
		return err
	}

	dst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dst); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", dst)
		}
		env.Log.Warn("Overwriting existing file", zap.String("file", dst))
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(dst, []byte(text), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	env.Log.Info("Stylesheet written", zap.String("file", dst), zap.Int("bytes", len(text)))
	return nil
}
