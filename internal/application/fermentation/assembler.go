package fermentation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultNamespace es el prefijo de tópico de telemetría de fermentación.
const DefaultNamespace = "brewpi/fermentation"

// Assembler enruta mensajes MQTT crudos al buffer de lecturas parciales.
// Los tópicos que no calzan con <namespace>/<tank-id>/<variable> se ignoran en
// silencio (la suscripción es global y recibe tráfico ajeno); los payloads que
// no parsean como float se descartan en silencio (telemetría best-effort).
type Assembler struct {
	pattern *regexp.Regexp
	buffer  *Buffer
}

// NewAssembler construye el ensamblador para el namespace dado (vacío => DefaultNamespace).
func NewAssembler(namespace string, buffer *Buffer) *Assembler {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	pattern := regexp.MustCompile(fmt.Sprintf(
		`^%s/([^/]+)/(temperature|pressure|co2)$`, regexp.QuoteMeta(namespace),
	))
	return &Assembler{pattern: pattern, buffer: buffer}
}

// HandleMessage procesa un mensaje entrante (topic, payload). Apto como
// listener del gestor MQTT.
func (a *Assembler) HandleMessage(topic string, payload []byte) {
	m := a.pattern.FindStringSubmatch(topic)
	if m == nil {
		return
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return
	}
	a.buffer.Put(m[1], m[2], value)
}
