package repository

import (
	"context"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
)

// ReadingRepository define el puerto de persistencia de lecturas consolidadas.
type ReadingRepository interface {
	Create(ctx context.Context, reading *entity.Reading) error
	// History devuelve las últimas `limit` lecturas del tanque, de la más
	// antigua a la más reciente.
	History(ctx context.Context, tankID string, limit int) ([]*entity.Reading, error)
}
