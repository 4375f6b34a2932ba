package entity

// Tank representa un tanque de fermentación. Se crea de forma perezosa con la
// primera lectura consolidada o al asignarle un perfil; la ingesta nunca lo borra.
type Tank struct {
	ID      string
	Name    string
	Profile *string // perfil de fermentación asignado (opcional)
}
