package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssb/state"
)

// RunBuild implements the build subcommand: flatten the entry manifest's
// import graph into one pruned, marker-annotated artifact.
func RunBuild(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	root := env.Cfg.Styles.Root
	layout := env.Cfg.Styles.Layout()
	fsys := os.DirFS(root)

	// a build without the entry manifest produces nothing meaningful
	if _, err := fs.Stat(fsys, layout.Entry); err != nil {
		return fmt.Errorf("entry manifest '%s' is not accessible under '%s': %w", layout.Entry, root, err)
	}

	flattened := NewResolver(fsys, layout, env.Log).Resolve(layout.Entry)
	env.Rpt.StoreData("build/flattened.css", []byte(flattened))

	pruned, err := NewPruner(layout, env.Log).Prune(flattened)
	if err != nil {
		return fmt.Errorf("unable to prune built bundle: %w", err)
	}

	out := env.Cfg.Bundle.Output
	if cmd.Args().Len() > 0 {
		out = cmd.Args().Get(0)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("unable to create output directory for '%s': %w", out, err)
	}
	if err := os.WriteFile(out, []byte(pruned), 0644); err != nil {
		return fmt.Errorf("unable to write bundle '%s': %w", out, err)
	}
	env.Rpt.Store("build/bundle.css", out)

	log.Info("Bundle built",
		zap.String("entry", layout.Entry),
		zap.String("output", out),
		zap.Int("bytes", len(pruned)))
	return nil
}

// RunUnbundle implements the unbundle subcommand: split a flattened bundle
// back into per-file sources and regenerate the entry manifest.
func RunUnbundle(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("unbundle")

	mode, err := ParseSplitMode(cmd.String("mode"))
	if err != nil {
		return err
	}

	in := env.Cfg.Bundle.Input
	if cmd.Args().Len() > 0 {
		in = cmd.Args().Get(0)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("unable to read bundle '%s': %w", in, err)
	}
	env.Rpt.StoreData("unbundle/input.css", data)

	layout := env.Cfg.Styles.Layout()
	res, err := NewSplitter(layout, env.Log).Split(data, mode)
	if err != nil {
		if errors.Is(err, ErrNoMarkers) {
			return fmt.Errorf("bundle '%s' carries no file markers; rerun with --mode anchors to route by the %s attribute: %w", in, layout.Attribute, err)
		}
		return err
	}

	for _, w := range res.Warnings {
		log.Warn("Routing problem", zap.String("detail", w))
	}

	root := env.Cfg.Styles.Root
	var werr error
	for _, p := range res.Files.Paths() {
		content := res.Files.Content(p)
		dst := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			werr = multierr.Append(werr, fmt.Errorf("unable to create directory for '%s': %w", dst, err))
			continue
		}
		if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
			werr = multierr.Append(werr, fmt.Errorf("unable to write '%s': %w", dst, err))
			continue
		}
		env.Rpt.StoreData("unbundle/"+p, []byte(content))
		log.Info("Source file written", zap.String("file", p), zap.Int("bytes", len(content)))
	}

	if res.UsedMarkers {
		manifest := RenderManifest(layout, res.ManifestImports)
		dst := filepath.Join(root, filepath.FromSlash(layout.Entry))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			werr = multierr.Append(werr, fmt.Errorf("unable to create directory for '%s': %w", dst, err))
		} else if err := os.WriteFile(dst, []byte(manifest), 0644); err != nil {
			werr = multierr.Append(werr, fmt.Errorf("unable to write manifest '%s': %w", dst, err))
		} else {
			env.Rpt.StoreData("unbundle/"+layout.Entry, []byte(manifest))
			log.Info("Manifest regenerated", zap.String("file", layout.Entry), zap.Int("imports", len(res.ManifestImports)))
		}
	}

	log.Info("Bundle split",
		zap.String("input", in),
		zap.String("mode", mode.String()),
		zap.Bool("markers", res.UsedMarkers),
		zap.Int("files", res.Files.Len()),
		zap.Int("warnings", len(res.Warnings)))
	return werr
}
