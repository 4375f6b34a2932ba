package events

import "sync"

// Tipos de evento difundidos a los suscriptores.
const (
	TypeAlta       = "ALTA"
	TypeUpdate     = "UPDATE"
	TypeDelete     = "DELETE"
	TypeConsumo    = "CONSUMO"
	TypeDevolucion = "DEVOLUCION"
	TypeImport     = "IMPORT"
	TypeReading    = "READING"
)

// Event es una notificación de dominio (cambio de inventario o telemetría).
type Event struct {
	Event     string `json:"event"`
	LotNumber string `json:"lot_number,omitempty"`
	TankID    string `json:"tank_id,omitempty"`
	Delta     string `json:"delta,omitempty"`
}

// Subscription es el handle de un suscriptor: un canal propio acotado y un
// Close explícito que lo da de baja del broadcaster.
type Subscription struct {
	ch chan Event
	b  *Broadcaster
}

// Events devuelve el canal de eventos del suscriptor. Se cierra al llamar Close.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close da de baja la suscripción y cierra su canal. Idempotente.
func (s *Subscription) Close() {
	s.b.unsubscribe(s)
}

// Broadcaster difunde eventos uno-a-muchos. Cada suscriptor tiene su cola
// acotada; si se llena se descarta el evento más antiguo de esa cola, de modo
// que un suscriptor lento o abandonado nunca bloquea al publicador ni al resto.
type Broadcaster struct {
	mu        sync.Mutex
	subs      map[*Subscription]struct{}
	queueSize int
}

// NewBroadcaster construye el broadcaster. queueSize es la capacidad de la
// cola de cada suscriptor; con valores <= 0 se usa 64.
func NewBroadcaster(queueSize int) *Broadcaster {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Broadcaster{
		subs:      make(map[*Subscription]struct{}),
		queueSize: queueSize,
	}
}

// Subscribe registra un nuevo suscriptor. Solo recibe eventos publicados
// después del registro.
func (b *Broadcaster) Subscribe() *Subscription {
	s := &Subscription{ch: make(chan Event, b.queueSize), b: b}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish entrega el evento a todos los suscriptores registrados en este
// momento. Nunca bloquea: cola llena => se descarta el evento más antiguo.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- ev:
			default:
			}
		}
	}
}

// Subscribers devuelve el número de suscriptores activos.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	// Publish sostiene el mismo mutex, así que cerrar aquí no compite con envíos.
	close(s.ch)
}
