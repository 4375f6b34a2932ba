package entity

import "time"

// Reading es una lectura consolidada e inmutable de un tanque: las tres
// variables medidas con el timestamp del tick de consolidación (no el de
// llegada de cada variable).
type Reading struct {
	ID          int64
	TankID      string
	Timestamp   time.Time
	Temperature float64
	Pressure    float64
	CO2         float64
}
