// Package compile implements build and theme commands: it runs token
// pipeline over a directory and writes results.
package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"dtc/config"
	"dtc/pipeline"
	"dtc/state"
	"dtc/theme"
)

// Build runs pipeline over TOKENS_DIR and writes theme and stylesheet into
// DESTINATION.
func Build(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	src, err := tokensDir(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite = cmd.Bool("overwrite")
	env.ThemeFormat = cmd.String("format")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.String("format", env.Format()))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	res, err := run(ctx, env, src, log)
	if err != nil {
		return err
	}
	return write(res, dst, env, log)
}

// Theme runs pipeline over TOKENS_DIR and prints assembled theme to STDOUT.
func Theme(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("theme")

	src, err := tokensDir(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	env.ThemeFormat = cmd.String("format")

	res, err := run(ctx, env, src, log)
	if err != nil {
		return err
	}
	data, err := EncodeTheme(res.Theme, env.Format())
	if err != nil {
		return err
	}
	_, err = cmd.Root().Writer.Write(data)
	return err
}

func tokensDir(arg string) (string, error) {
	if len(arg) == 0 {
		arg = state.DefaultTokensDir
	}
	dir, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("tokens directory was not found (%s): %w", dir, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("tokens source is not a directory (%s)", dir)
	}
	return dir, nil
}

// run handles pipeline execution independently of CLI framework.
func run(ctx context.Context, env *state.LocalEnv, src string, log *zap.Logger) (*pipeline.Result, error) {
	if err := env.Rpt.StoreCopy("tokens", src); err != nil {
		log.Warn("Unable to store tokens in debug report", zap.Error(err))
	}

	res, err := pipeline.Run(ctx, os.DirFS(src), env.Cfg.PipelineOptions(), log)
	if err != nil {
		return nil, err
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("result.txt", []byte(res.String()))
	}
	return res, nil
}

// write stores theme and stylesheet in dst directory.
func write(res *pipeline.Result, dst string, env *state.LocalEnv, log *zap.Logger) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("unable to create destination directory: %w", err)
	}

	data, err := EncodeTheme(res.Theme, env.Format())
	if err != nil {
		return err
	}

	outputs := []struct {
		name string
		data []byte
	}{
		{config.CleanFileName(env.Cfg.Output.ThemeFile), data},
		{config.CleanFileName(env.Cfg.Output.StylesheetFile), []byte(res.Stylesheet.String())},
	}

	for _, o := range outputs {
		fname := filepath.Join(dst, o.name)
		if _, err := os.Stat(fname); err == nil && !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", fname)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("unable to check output file: %w", err)
		}
	}

	for _, o := range outputs {
		fname := filepath.Join(dst, o.name)
		if err := os.WriteFile(fname, o.data, 0644); err != nil {
			return fmt.Errorf("unable to write %s: %w", fname, err)
		}
		env.Rpt.Store(filepath.Join("output", o.name), fname)
		log.Info("Output written", zap.String("file", fname), zap.Int("bytes", len(o.data)))
	}
	return nil
}

// EncodeTheme serializes theme in requested format keeping category and key
// order.
func EncodeTheme(th *theme.Theme, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := sonic.MarshalIndent(th, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("unable to encode theme: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		buf := new(bytes.Buffer)
		enc := yaml.NewEncoder(buf)
		enc.SetIndent(2)
		if err := enc.Encode(th); err != nil {
			return nil, fmt.Errorf("unable to encode theme: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("unable to encode theme: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported theme format %q", format)
	}
}
