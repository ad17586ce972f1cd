package data

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/yola1107/lumina-ludo/internal/biz/table"
	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/library/log"
	"github.com/yola1107/lumina-ludo/library/mq/rabbitmq"
	"github.com/yola1107/lumina-ludo/library/work"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewTableRepo, NewAdviceRepo, NewProfileRepo, NewSink)

// Data .
type Data struct {
	c    *conf.Bootstrap
	work work.IWorkStore
	rdb  *redis.Client
	pub  *rabbitmq.Publisher
	chat *chatClient
}

// NewData .
func NewData(c *conf.Bootstrap) (*Data, func(), error) {
	ws := work.NewWorkStore(context.Background(), c.Game.Work.Tick, c.Game.Work.PoolSize)
	if err := ws.Start(); err != nil {
		return nil, nil, err
	}

	d := &Data{c: c, work: ws, rdb: NewRedis(&c.Data.Redis)}
	if c.Data.Rabbit.Enabled {
		pub, err := rabbitmq.NewPublisher(c.Data.Rabbit.Conn, c.Data.Rabbit.Publisher)
		if err != nil {
			ws.Stop()
			if d.rdb != nil {
				_ = d.rdb.Close()
			}
			return nil, nil, fmt.Errorf("rabbitmq: %w", err)
		}
		d.pub = pub
	}
	if c.Advisor.Enabled {
		d.chat = newChatClient(&c.Advisor)
	}

	cleanup := func() {
		log.Info("closing the data resources")
		ws.Stop()
		if d.rdb != nil {
			_ = d.rdb.Close()
		}
		if d.pub != nil {
			d.pub.Close()
		}
	}
	return d, cleanup, nil
}

// NewRedis 未配置地址时返回 nil
func NewRedis(c *conf.Redis) *redis.Client {
	if c.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:        c.Addr,
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: c.DialTimeout,
	})
}

type tableRepo struct {
	data *Data
	dice table.Dice
	sink table.Sink
}

// NewTableRepo .
func NewTableRepo(data *Data, sink table.Sink) table.Repo {
	return &tableRepo{data: data, dice: table.NewRandDice(), sink: sink}
}

func (r *tableRepo) GetLoop() work.ITaskLoop   { return r.data.work }
func (r *tableRepo) GetTimer() work.Scheduler  { return r.data.work }
func (r *tableRepo) GetDice() table.Dice       { return r.dice }
func (r *tableRepo) GetSink() table.Sink       { return r.sink }
func (r *tableRepo) GetGameConfig() *conf.Game { return &r.data.c.Game }
