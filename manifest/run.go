package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cssb/state"
)

// RunSync implements the sync subcommand: report manifest drift and, on
// explicit request, append imports for files the manifest misses. Drift by
// itself is never an error.
func RunSync(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("sync")

	root := env.Cfg.Styles.Root
	layout := env.Cfg.Styles.Layout()

	rpt, err := Diff(os.DirFS(root), layout)
	if err != nil {
		return fmt.Errorf("unable to diff manifest '%s' under '%s': %w", layout.Entry, root, err)
	}

	log.Info("Manifest checked",
		zap.String("manifest", layout.Entry),
		zap.Int("valid", len(rpt.Valid)),
		zap.Int("orphaned", len(rpt.Orphaned)),
		zap.Int("missing", len(rpt.Missing)),
		zap.Bool("in_sync", rpt.InSync()))

	for _, p := range rpt.Orphaned {
		log.Warn("Orphaned import, file does not exist (remove the import by hand)", zap.String("file", p))
	}
	for _, p := range rpt.Missing {
		log.Warn("File on disk is not imported", zap.String("file", p))
	}

	if rpt.InSync() || !cmd.Bool("repair") {
		return nil
	}

	mf := filepath.Join(root, filepath.FromSlash(layout.Entry))
	data, err := os.ReadFile(mf)
	if err != nil {
		return fmt.Errorf("unable to read manifest '%s': %w", mf, err)
	}
	env.Rpt.StoreData("sync/manifest-before.css", data)

	repaired := Repair(string(data), layout, rpt.Missing)
	if err := os.WriteFile(mf, []byte(repaired), 0644); err != nil {
		return fmt.Errorf("unable to write manifest '%s': %w", mf, err)
	}
	env.Rpt.StoreData("sync/manifest-after.css", []byte(repaired))

	log.Info("Manifest repaired", zap.Int("imports_added", len(rpt.Missing)))
	return nil
}
