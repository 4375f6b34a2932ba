package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

var _ repository.ReadingRepository = (*ReadingRepo)(nil)

// ReadingRepo implementación de ReadingRepository sobre PostgreSQL (usable con pool o tx).
type ReadingRepo struct {
	q Querier
}

// NewReadingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReadingRepository(q Querier) *ReadingRepo {
	return &ReadingRepo{q: q}
}

// Create persiste una lectura consolidada.
func (r *ReadingRepo) Create(ctx context.Context, reading *entity.Reading) error {
	query := `
		INSERT INTO fermentation_readings (tank_id, timestamp, temperature, pressure, co2)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		reading.TankID, reading.Timestamp, reading.Temperature, reading.Pressure, reading.CO2,
	).Scan(&reading.ID)
	if err != nil {
		return fmt.Errorf("create reading: %w", err)
	}
	return nil
}

// History devuelve las últimas `limit` lecturas del tanque, de la más antigua
// a la más reciente (se consultan descendentes y se invierte el orden).
func (r *ReadingRepo) History(ctx context.Context, tankID string, limit int) ([]*entity.Reading, error) {
	query := `
		SELECT id, tank_id, timestamp, temperature, pressure, co2
		FROM fermentation_readings
		WHERE tank_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, tankID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var readings []*entity.Reading
	for rows.Next() {
		var rd entity.Reading
		if err := rows.Scan(&rd.ID, &rd.TankID, &rd.Timestamp, &rd.Temperature, &rd.Pressure, &rd.CO2); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, &rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
	return readings, nil
}
