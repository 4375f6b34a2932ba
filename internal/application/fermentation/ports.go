package fermentation

import (
	"context"

	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que todas las lecturas consolidadas
// de un mismo tick se confirmen como una unidad atómica.
type TxRunner interface {
	RunIngest(ctx context.Context, fn func(
		tankRepo repository.TankRepository,
		readingRepo repository.ReadingRepository,
	) error) error
}
