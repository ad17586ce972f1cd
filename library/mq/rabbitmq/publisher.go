package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

var ErrClosed = errors.New("publisher closed")

// Publisher 单连接单信道的生产者, 并发安全
type Publisher struct {
	opts    Options
	pubOpts PublisherOptions

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

func NewPublisher(opts Options, pubOpts PublisherOptions) (*Publisher, error) {
	conn, err := amqp.Dial(opts.BuildURL())
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if pubOpts.Exchange != "" {
		if err := ch.ExchangeDeclare(
			pubOpts.Exchange,
			pubOpts.ExchangeType,
			true, false, false, false, nil,
		); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}

	return &Publisher{
		conn:    conn,
		ch:      ch,
		opts:    opts,
		pubOpts: pubOpts,
	}, nil
}

// Publish 投递一条非持久消息. amqp 信道不支持 ctx, 只在投递前检查
func (p *Publisher) Publish(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.ch.Publish(
		p.pubOpts.Exchange,
		p.pubOpts.RoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:  p.pubOpts.ContentType,
			Body:         body,
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now(),
		},
	)
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
