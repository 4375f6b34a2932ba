package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

var _ repository.TankRepository = (*TankRepo)(nil)

// TankRepo implementación de TankRepository sobre PostgreSQL (usable con pool o tx).
type TankRepo struct {
	q Querier
}

// NewTankRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTankRepository(q Querier) *TankRepo {
	return &TankRepo{q: q}
}

// List devuelve todos los tanques registrados.
func (r *TankRepo) List(ctx context.Context) ([]*entity.Tank, error) {
	query := `SELECT id, name, profile FROM fermentation_tanks ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tanks: %w", err)
	}
	defer rows.Close()

	var tanks []*entity.Tank
	for rows.Next() {
		var t entity.Tank
		if err := rows.Scan(&t.ID, &t.Name, &t.Profile); err != nil {
			return nil, fmt.Errorf("scan tank: %w", err)
		}
		tanks = append(tanks, &t)
	}
	return tanks, rows.Err()
}

// Get obtiene un tanque por id; nil si no existe.
func (r *TankRepo) Get(ctx context.Context, id string) (*entity.Tank, error) {
	query := `SELECT id, name, profile FROM fermentation_tanks WHERE id = $1`
	var t entity.Tank
	err := r.q.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Profile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tank: %w", err)
	}
	return &t, nil
}

// Upsert inserta o actualiza el tanque (nombre y perfil).
func (r *TankRepo) Upsert(ctx context.Context, tank *entity.Tank) error {
	query := `
		INSERT INTO fermentation_tanks (id, name, profile)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, profile = EXCLUDED.profile`
	_, err := r.q.Exec(ctx, query, tank.ID, tank.Name, tank.Profile)
	if err != nil {
		return fmt.Errorf("upsert tank: %w", err)
	}
	return nil
}

// EnsureExists crea el tanque con nombre igual al id si todavía no existe.
func (r *TankRepo) EnsureExists(ctx context.Context, id string) error {
	query := `
		INSERT INTO fermentation_tanks (id, name)
		VALUES ($1, $1)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ensure tank: %w", err)
	}
	return nil
}
