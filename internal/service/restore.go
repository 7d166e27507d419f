package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/logger"
	"damper/internal/models"
	"damper/internal/preset"
	"damper/internal/repository"

	"github.com/google/uuid"
)

// Restore sources.
const (
	SourceDatabase = "database"
	SourcePreset   = "preset"
	SourceDefaults = "defaults"
)

// Restore seeds session before the first evaluation: the stored parameter row
// wins, then the YAML preset at presetPath, then schema defaults. It returns
// the source used and records a RESTORE event.
func Restore(ctx context.Context, session *engine.Session, repos *repository.Repository, presetPath string, log *logger.Logger) (string, error) {
	source, vals, err := restoreValues(ctx, repos.ParamRepo, presetPath, log)
	if err != nil {
		return "", err
	}
	session.Load(vals)

	now := time.Now().UTC()
	if source != SourceDatabase {
		p := paramsFromValues(session.StorableValues())
		p.UpdatedAt = now
		if err := repos.ParamRepo.Save(ctx, p); err != nil {
			return "", fmt.Errorf("save restored params: %w", err)
		}
	}

	log.Infow("node_restored", "source", source, "params", len(vals))
	return source, repos.EventRepo.Append(ctx, models.NodeEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        models.EventRestore,
		Description: "node parameters restored from " + source,
		Metadata:    names(vals),
	})
}

func restoreValues(ctx context.Context, repo repository.ParamRepo, presetPath string, log *logger.Logger) (string, map[damper.ParamID]damper.Value, error) {
	stored, err := repo.Load(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load params: %w", err)
	}
	if stored.ID != 0 {
		return SourceDatabase, valuesFromParams(stored), nil
	}

	if presetPath != "" {
		p, err := preset.Load(presetPath)
		switch {
		case err == nil:
			return SourcePreset, p.Values(), nil
		case errors.Is(err, fs.ErrNotExist):
			log.Warnw("node_preset_missing", "path", presetPath)
		default:
			return "", nil, err
		}
	}
	return SourceDefaults, map[damper.ParamID]damper.Value{}, nil
}
