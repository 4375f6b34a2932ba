package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/jhoicas/BrewPi-api/internal/domain"
	"github.com/jhoicas/BrewPi-api/pkg/config"
	"github.com/jhoicas/BrewPi-api/pkg/logger"
)

// Listener callback para mensajes entrantes (topic, payload crudo).
type Listener func(topic string, payload []byte)

// Manager gestiona la única conexión al broker MQTT: conectar/desconectar,
// suscribir, publicar y el stream de mensajes entrantes hacia los listeners.
// Los listeners se invocan en orden de registro y en serie con el orden de
// llegada: un mensaje se entrega a todos antes de procesar el siguiente.
type Manager struct {
	cfg config.MQTTConfig
	log *logger.Logger

	mu        sync.Mutex
	client    paho.Client
	listeners []Listener
	sessionOK bool // la última sesión llegó a conectar (resetea el backoff)

	// lost recibe el error del handler de conexión perdida de paho;
	// capacidad 1 para no bloquear al handler si el loop aún no lee.
	lost chan error
}

// NewManager construye el gestor. No conecta todavía.
func NewManager(cfg config.MQTTConfig, log *logger.Logger) *Manager {
	return &Manager{
		cfg:  cfg,
		log:  log,
		lost: make(chan error, 1),
	}
}

// AddListener registra un callback para mensajes entrantes. Registrar antes de
// Run para no perder mensajes tras la primera conexión.
func (m *Manager) AddListener(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Connect establece la sesión con el broker. La reconexión automática de paho
// queda desactivada: la supervisión la hace Run con su propio backoff.
func (m *Manager) Connect(ctx context.Context) error {
	clientID := m.cfg.ClientID
	if clientID == "" {
		clientID = "brewpi-api-" + uuid.New().String()[:8]
	}
	opts := paho.NewClientOptions().
		AddBroker(m.cfg.BrokerURL()).
		SetClientID(clientID).
		SetAutoReconnect(false).
		SetOrderMatters(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			select {
			case m.lost <- err:
			default:
			}
		})
	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
		opts.SetPassword(m.cfg.Password)
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("conectar al broker %s: %w", m.cfg.BrokerURL(), err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()

	m.log.Info().Str("broker", m.cfg.BrokerURL()).Str("client_id", clientID).Msg("conectado al broker MQTT")
	return nil
}

// Disconnect cierra la conexión si está abierta. Idempotente y seguro de
// llamar sin haber conectado nunca.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		m.log.Info().Msg("desconexión del broker MQTT")
	}
}

// Subscribe se suscribe a un tópico. domain.ErrNotConnected antes de un
// Connect exitoso.
func (m *Manager) Subscribe(topic string) error {
	client, err := m.connected()
	if err != nil {
		return err
	}
	token := client.Subscribe(topic, 0, m.dispatch)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("suscribir a %s: %w", topic, err)
	}
	m.log.Debug().Str("topic", topic).Msg("suscrito a tópico")
	return nil
}

// Publish publica un mensaje en un tópico. domain.ErrNotConnected antes de un
// Connect exitoso.
func (m *Manager) Publish(topic string, payload []byte) error {
	client, err := m.connected()
	if err != nil {
		return err
	}
	token := client.Publish(topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publicar en %s: %w", topic, err)
	}
	return nil
}

// Run es el bucle supervisor: conecta, se suscribe al wildcard universal y
// reenvía cada mensaje a los listeners hasta perder la conexión; entonces
// espera con backoff exponencial (intervalo inicial y tope de configuración)
// y repite el ciclo completo. Solo termina con la cancelación del contexto.
func (m *Manager) Run(ctx context.Context) {
	backoff := m.cfg.ReconnectInterval()
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	maxBackoff := m.cfg.MaxReconnectInterval()
	if maxBackoff < backoff {
		maxBackoff = backoff
	}
	wait := backoff

	for {
		if err := m.runSession(ctx); err != nil {
			m.log.Warn().Err(err).Dur("retry_in", wait).Msg("error MQTT, reconectando")
		}
		select {
		case <-ctx.Done():
			m.Disconnect()
			return
		case <-time.After(wait):
		}
		// Tras una sesión que llegó a conectar, el backoff arranca de nuevo.
		if m.hadSession() {
			wait = backoff
		} else {
			wait *= 2
			if wait > maxBackoff {
				wait = maxBackoff
			}
		}
	}
}

// runSession ejecuta un ciclo conectar-suscribir-reenviar y devuelve el error
// que lo terminó (nil solo si el contexto se canceló).
func (m *Manager) runSession(ctx context.Context) error {
	m.setSession(false)
	if err := m.Connect(ctx); err != nil {
		return err
	}
	m.setSession(true)
	if err := m.Subscribe("#"); err != nil {
		m.Disconnect()
		return err
	}
	select {
	case <-ctx.Done():
		return nil
	case err := <-m.lost:
		return fmt.Errorf("conexión perdida: %w", err)
	}
}

func (m *Manager) setSession(ok bool) {
	m.mu.Lock()
	m.sessionOK = ok
	m.mu.Unlock()
}

func (m *Manager) hadSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionOK
}

// dispatch reenvía un mensaje entrante a todos los listeners en orden de
// registro. paho lo invoca en serie (order matters), así que un mensaje se
// entrega completo antes del siguiente.
func (m *Manager) dispatch(_ paho.Client, msg paho.Message) {
	m.mu.Lock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(msg.Topic(), msg.Payload())
	}
}

func (m *Manager) connected() (paho.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil || !m.client.IsConnected() {
		return nil, domain.ErrNotConnected
	}
	return m.client, nil
}
