package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"cssn/pipeline"
	"cssn/plugin"
	"cssn/state"
)

// runBuild processes every SOURCE through the configured pipeline. Failures
// are collected per file so one bad source does not stop the rest.
func runBuild(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)

	sources := cmd.Args().Slice()
	if len(sources) == 0 {
		return errors.New("no sources to process")
	}

	env.Overwrite = cmd.Bool("overwrite")
	if name := cmd.String("force-cp"); len(name) > 0 {
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil || enc == nil {
			return fmt.Errorf("unsupported source encoding '%s': %w", name, err)
		}
		env.CodePage = enc
	}

	dest := cmd.String("output")
	if len(dest) == 0 && len(sources) > 1 {
		return errors.New("processing multiple sources requires --output directory")
	}

	registry := plugin.NewRegistry()

	var errAll error
	for _, src := range sources {
		if err := buildOne(env, registry, src, dest, len(sources) > 1); err != nil {
			errAll = multierr.Append(errAll, fmt.Errorf("processing '%s': %w", src, err))
		}
	}
	return errAll
}

// buildOne runs a single source through a freshly assembled pipeline.
// Handlers are created per file - some of them are stateful and must not see
// more than one source.
func buildOne(env *state.LocalEnv, registry *plugin.Registry, src, dest string, destIsDir bool) error {

	inputs, err := registry.Inputs(env.Cfg.Pipeline.Input)
	if err != nil {
		return err
	}
	transforms, err := registry.Transforms(env.Cfg.Pipeline.Transform)
	if err != nil {
		return err
	}
	outputs, err := registry.Outputs(env.Cfg.Pipeline.Output)
	if err != nil {
		return err
	}

	text, err := readSource(src, env.CodePage)
	if err != nil {
		return err
	}

	pl := pipeline.New(env.Log,
		pipeline.WithInput(inputs...),
		pipeline.WithTransform(transforms...),
		pipeline.WithOutput(outputs...))

	flat, err := pl.Process(text)
	if err != nil {
		return err
	}

	if len(dest) == 0 {
		_, err = io.WriteString(os.Stdout, flat)
		return err
	}

	out := dest
	if destIsDir {
		out = filepath.Join(dest, outputName(src))
	}
	if !env.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("destination '%s' already exists (use --overwrite)", out)
		}
	}
	if err := os.WriteFile(out, []byte(flat), 0644); err != nil {
		return fmt.Errorf("unable to write destination: %w", err)
	}

	env.Log.Info("Processed", zap.String("source", src), zap.String("destination", out), zap.Int("bytes", len(flat)))
	return nil
}

// readSource loads a file (or STDIN for "-") and decodes it to UTF-8. A BOM
// always wins; otherwise the forced code page applies when one was given.
func readSource(src string, cp encoding.Encoding) (string, error) {

	var (
		data []byte
		err  error
	)
	if src == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return "", fmt.Errorf("unable to read source: %w", err)
	}

	if cp == nil {
		cp = unicode.UTF8
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(cp.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("unable to decode source: %w", err)
	}
	return string(decoded), nil
}

// outputName derives the flat-CSS file name for a source path.
func outputName(src string) string {
	base := filepath.Base(src)
	if src == "-" {
		base = "stdin"
	}
	ext := filepath.Ext(base)
	if strings.EqualFold(ext, ".css") {
		return strings.TrimSuffix(base, ext) + ".flat.css"
	}
	return strings.TrimSuffix(base, ext) + ".css"
}
