package fermentation

import (
	"context"

	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
)

// DefaultHistoryLimit son ~2 días de historia a una lectura por minuto.
const DefaultHistoryLimit = 2880

// TankUseCase expone las consultas del subsistema de fermentación.
type TankUseCase struct {
	tankRepo    repository.TankRepository
	readingRepo repository.ReadingRepository
}

// NewTankUseCase construye el caso de uso.
func NewTankUseCase(tankRepo repository.TankRepository, readingRepo repository.ReadingRepository) *TankUseCase {
	return &TankUseCase{tankRepo: tankRepo, readingRepo: readingRepo}
}

// ListTanks devuelve todos los tanques registrados.
func (uc *TankUseCase) ListTanks(ctx context.Context) ([]*entity.Tank, error) {
	return uc.tankRepo.List(ctx)
}

// AssignProfile asigna un perfil de fermentación al tanque, creándolo si aún
// no existe (nombre igual al id, como en la ingesta).
func (uc *TankUseCase) AssignProfile(ctx context.Context, tankID, profileName string) error {
	tank, err := uc.tankRepo.Get(ctx, tankID)
	if err != nil {
		return err
	}
	if tank == nil {
		tank = &entity.Tank{ID: tankID, Name: tankID}
	}
	tank.Profile = &profileName
	return uc.tankRepo.Upsert(ctx, tank)
}

// History devuelve las últimas `limit` lecturas del tanque de la más antigua a
// la más reciente. limit <= 0 usa DefaultHistoryLimit.
func (uc *TankUseCase) History(ctx context.Context, tankID string, limit int) ([]*entity.Reading, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return uc.readingRepo.History(ctx, tankID, limit)
}
