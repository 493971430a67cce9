package kafka

import (
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

// MustMarshal untuk tipe yang kita kontrol sendiri; gagal marshal berarti
// bug, bukan kondisi runtime.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// PublishEnvelope antre satu event order. Headers bawa tipe + versi supaya
// consumer bisa route tanpa decode body.
func (p *Producer) PublishEnvelope(key []byte, ev shop.Envelope) {
	p.Publish(key, MustMarshal(ev),
		kafka.Header{Key: "x-event-type", Value: []byte(ev.EventType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}
