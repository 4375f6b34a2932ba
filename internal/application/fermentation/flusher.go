package fermentation

import (
	"context"
	"time"

	"github.com/jhoicas/BrewPi-api/internal/application/events"
	"github.com/jhoicas/BrewPi-api/internal/domain/entity"
	"github.com/jhoicas/BrewPi-api/internal/domain/repository"
	"github.com/jhoicas/BrewPi-api/pkg/logger"
)

// Flusher consolida periódicamente el buffer de lecturas parciales: en cada
// tick persiste en una sola transacción las lecturas de los tanques con el
// triple completo, con el timestamp del tick compartido entre todas.
type Flusher struct {
	buffer      *Buffer
	txRunner    TxRunner
	broadcaster *events.Broadcaster
	log         *logger.Logger
	interval    time.Duration
	maxAge      time.Duration
	now         func() time.Time
}

// NewFlusher construye el scheduler. interval <= 0 usa 1 s; maxAge <= 0
// desactiva la expulsión de parciales antiguos.
func NewFlusher(
	buffer *Buffer,
	txRunner TxRunner,
	broadcaster *events.Broadcaster,
	log *logger.Logger,
	interval, maxAge time.Duration,
) *Flusher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Flusher{
		buffer:      buffer,
		txRunner:    txRunner,
		broadcaster: broadcaster,
		log:         log,
		interval:    interval,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

// Run ejecuta el ciclo de consolidación hasta que se cancele el contexto.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.FlushOnce(ctx)
		}
	}
}

// FlushOnce ejecuta un tick de consolidación: expulsa parciales vencidos,
// extrae atómicamente los triples completos y los persiste juntos.
// El snapshot-y-borrado ocurre antes de tocar la BD, así un Put concurrente
// posterior cae en una entrada nueva del buffer y no se pierde.
func (f *Flusher) FlushOnce(ctx context.Context) {
	for _, st := range f.buffer.EvictStale(f.maxAge) {
		f.log.Warn().
			Str("tank_id", st.TankID).
			Strs("variables", st.Variables).
			Dur("age", st.Age).
			Msg("lectura parcial desechada por antigüedad (posible sensor ausente)")
	}

	complete := f.buffer.TakeComplete()
	if len(complete) == 0 {
		return
	}
	tick := f.now().UTC()

	err := f.txRunner.RunIngest(ctx, func(
		tankRepo repository.TankRepository,
		readingRepo repository.ReadingRepository,
	) error {
		for tankID, values := range complete {
			if err := tankRepo.EnsureExists(ctx, tankID); err != nil {
				return err
			}
			reading := &entity.Reading{
				TankID:      tankID,
				Timestamp:   tick,
				Temperature: values.Temperature,
				Pressure:    values.Pressure,
				CO2:         values.CO2,
			}
			if err := readingRepo.Create(ctx, reading); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Los valores consolidados ya salieron del buffer y no se restauran:
		// el fallo de commit pierde esas lecturas (limitación aceptada).
		f.log.Error().Err(err).
			Int("tanks", len(complete)).
			Time("tick", tick).
			Msg("fallo al persistir lecturas consolidadas; valores del tick perdidos")
		return
	}

	for tankID := range complete {
		f.broadcaster.Publish(events.Event{Event: events.TypeReading, TankID: tankID})
	}
}
