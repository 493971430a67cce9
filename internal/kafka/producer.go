package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Producer buffer pesan lewat channel dan flush di satu goroutine, supaya
// handler HTTP tidak pernah nunggu broker.
type Producer struct {
	w       *kafka.Writer
	log     *logrus.Entry
	inbox   chan kafka.Message
	quit    chan struct{} // ditutup sekali saat shutdown dimulai
	closeCh chan struct{}
	once    sync.Once
}

func NewProducer(brokers []string, topic string, buf int, log *logrus.Entry) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true, // fire-and-forget untuk throughput; error di-log di loop
		},
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		quit:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		defer func() { _ = p.w.Close() }()
		for {
			select {
			case <-ctx.Done():
				p.Close()
				p.drain()
				return
			case <-p.quit:
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

// drain flush sisa pesan yang sudah terlanjur di buffer.
func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.log.WithError(err).WithField("key", string(m.Key)).Error("kafka write")
	}
}

// Publish antre satu pesan. Setelah Close pesan di-drop; tidak pernah panic
// atau nge-block di tengah shutdown.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	select {
	case <-p.quit:
		return
	default:
	}
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case <-p.quit:
	case p.inbox <- m:
	}
}

// Close idempotent: mulai shutdown, goroutine nge-flush sisa pesan lalu
// exit rapi.
func (p *Producer) Close() { p.once.Do(func() { close(p.quit) }) }

// Tunggu sampai goroutine selesai.
func (p *Producer) WaitClosed() { <-p.closeCh }
