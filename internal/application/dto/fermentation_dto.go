package dto

import (
	"time"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
)

// TankResponse representación de un tanque de fermentación.
type TankResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Profile *string `json:"profile,omitempty"`
}

// NewTankResponse mapea la entidad al DTO de salida.
func NewTankResponse(t *entity.Tank) TankResponse {
	return TankResponse{ID: t.ID, Name: t.Name, Profile: t.Profile}
}

// AssignProfileRequest cuerpo para asignar un perfil de fermentación.
type AssignProfileRequest struct {
	ProfileName string `json:"profile_name"`
}

// ReadingResponse lectura consolidada de un tanque.
type ReadingResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Pressure    float64   `json:"pressure"`
	CO2         float64   `json:"co2"`
}

// NewReadingResponse mapea la entidad al DTO de salida.
func NewReadingResponse(r *entity.Reading) ReadingResponse {
	return ReadingResponse{
		Timestamp:   r.Timestamp,
		Temperature: r.Temperature,
		Pressure:    r.Pressure,
		CO2:         r.CO2,
	}
}
