package data

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/yola1107/lumina-ludo/internal/biz/table"
	"github.com/yola1107/lumina-ludo/library/mq/rabbitmq"
)

// redisSink 把对局事件发布到 Redis 频道, 只用于观察
type redisSink struct {
	rdb     *redis.Client
	channel string
}

func (s *redisSink) Emit(ctx context.Context, ev table.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, s.channel, b).Err()
}

// rabbitSink 把对局事件投递到交换机
type rabbitSink struct {
	pub *rabbitmq.Publisher
}

func (s *rabbitSink) Emit(ctx context.Context, ev table.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.pub.Publish(ctx, b)
}

// NewSink 进程日志 + 可选的 Redis/RabbitMQ 发布
func NewSink(data *Data) table.Sink {
	sinks := table.MultiSink{table.LogSink{}}
	if data.rdb != nil {
		sinks = append(sinks, &redisSink{rdb: data.rdb, channel: data.c.Data.Redis.Channel})
	}
	if data.pub != nil {
		sinks = append(sinks, &rabbitSink{pub: data.pub})
	}
	return sinks
}
