package repository

import (
	"context"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
)

// TankRepository define el puerto de persistencia de tanques de fermentación.
type TankRepository interface {
	List(ctx context.Context) ([]*entity.Tank, error)
	Get(ctx context.Context, id string) (*entity.Tank, error)
	Upsert(ctx context.Context, tank *entity.Tank) error
	// EnsureExists crea el tanque con nombre igual al id si no existe todavía.
	EnsureExists(ctx context.Context, id string) error
}
