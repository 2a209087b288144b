package log

import (
	"context"

	"github.com/pressly/goose/v3"
)

// LogMigrations reports goose provider results through the context logger.
func LogMigrations(ctx context.Context, results []*goose.MigrationResult) {
	logger := FromCtx(ctx)
	if len(results) == 0 {
		logger.Debug().Msg("schema up to date")
		return
	}
	for _, r := range results {
		ev := logger.Info()
		if r.Error != nil {
			ev = logger.Error().Err(r.Error)
		}
		if r.Source != nil {
			ev = ev.Int64("version", r.Source.Version).Str("path", r.Source.Path)
		}
		ev.Str("direction", r.Direction).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
}
