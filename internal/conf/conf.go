package conf

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/yola1107/lumina-ludo/library/log"
	"github.com/yola1107/lumina-ludo/library/mq/rabbitmq"
)

const Name = "ludo"

// 对局模式
const (
	ModeAI    = "ai"    // 0号座位真人, 其余为顾问
	ModeLocal = "local" // 2~4 名真人同屏
	ModeBots  = "bots"  // 全部由顾问操作
)

var ErrInvalidConfig = errors.New("invalid config")

type Bootstrap struct {
	Log     log.Config `yaml:"log"`
	Game    Game       `yaml:"game"`
	Advisor Advisor    `yaml:"advisor"`
	Data    Data       `yaml:"data"`
}

type Game struct {
	Mode       string        `yaml:"mode" env:"LUDO_MODE"`
	Players    int           `yaml:"players"`     // local 模式人数
	Matches    int           `yaml:"matches"`     // 启动后运行的对局数
	Parallel   int           `yaml:"parallel"`    // 同时运行的对局数
	ThinkDelay time.Duration `yaml:"think_delay"` // 顾问操作前的停顿, 0 关闭
	ChatSize   int           `yaml:"chat_size"`   // 消息环大小
	Retention  time.Duration `yaml:"retention"`   // 已结束对局的保留时间
	LogCache   LogCache      `yaml:"log_cache"`
	Work       Work          `yaml:"work"`
}

type LogCache struct {
	Open bool   `yaml:"open"`
	Dir  string `yaml:"dir"`
}

type Work struct {
	PoolSize int           `yaml:"pool_size"`
	Tick     time.Duration `yaml:"tick"`
}

type Advisor struct {
	Enabled     bool          `yaml:"enabled" env:"LUDO_ADVISOR_ENABLED"`
	BaseURL     string        `yaml:"base_url" env:"LUDO_ADVISOR_BASE_URL"`
	APIKey      string        `yaml:"api_key" env:"LUDO_ADVISOR_API_KEY"`
	Model       string        `yaml:"model" env:"LUDO_ADVISOR_MODEL"`
	Timeout     time.Duration `yaml:"timeout"`      // 单次选子的远程调用上限
	MinInterval time.Duration `yaml:"min_interval"` // 远程调用最小间隔
	Profiles    bool          `yaml:"profiles"`     // 开局时远程生成对手资料
}

type Data struct {
	Redis  Redis  `yaml:"redis"`
	Rabbit Rabbit `yaml:"rabbit"`
}

type Redis struct {
	Addr        string        `yaml:"addr" env:"LUDO_REDIS_ADDR"`
	Password    string        `yaml:"password" env:"LUDO_REDIS_PASSWORD"`
	DB          int           `yaml:"db"`
	Channel     string        `yaml:"channel"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// Rabbit 事件额外投递到交换机, Enabled 关闭时不建连
type Rabbit struct {
	Enabled   bool                      `yaml:"enabled" env:"LUDO_RABBIT_ENABLED"`
	Conn      rabbitmq.Options          `yaml:"conn"`
	Publisher rabbitmq.PublisherOptions `yaml:"publisher"`
}

func Default() Bootstrap {
	lc := log.DefaultConfig()
	lc.AppName = Name
	return Bootstrap{
		Log: lc,
		Game: Game{
			Mode:       ModeAI,
			Players:    4,
			Matches:    1,
			Parallel:   4,
			ThinkDelay: 1500 * time.Millisecond,
			ChatSize:   16,
			Retention:  10 * time.Minute,
			LogCache:   LogCache{Dir: "./logs/log_cache"},
			Work:       Work{PoolSize: 100, Tick: 50 * time.Millisecond},
		},
		Advisor: Advisor{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Timeout:     3 * time.Second,
			MinInterval: 200 * time.Millisecond,
		},
		Data: Data{
			Redis:  Redis{Channel: "ludo:events", DialTimeout: time.Second},
			Rabbit: Rabbit{Conn: rabbitmq.DefaultOptions(), Publisher: rabbitmq.DefaultPublisherOptions()},
		},
	}
}

// Load 读取配置文件(可为空), 合并默认值, 再用环境变量覆盖
func Load(path string) (*Bootstrap, error) {
	var c Bootstrap
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err = yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := mergo.Merge(&c, Default()); err != nil {
		return nil, fmt.Errorf("merge defaults: %w", err)
	}
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Bootstrap) Validate() error {
	g := c.Game
	switch g.Mode {
	case ModeAI, ModeBots:
	case ModeLocal:
		if g.Players < 2 || g.Players > 4 {
			return fmt.Errorf("%w: local mode needs 2-4 players, got %d", ErrInvalidConfig, g.Players)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, g.Mode)
	}
	if g.Matches < 1 {
		return fmt.Errorf("%w: matches=%d", ErrInvalidConfig, g.Matches)
	}
	if g.Parallel < 1 || g.Work.PoolSize < 1 {
		return fmt.Errorf("%w: parallel=%d pool_size=%d", ErrInvalidConfig, g.Parallel, g.Work.PoolSize)
	}
	if g.ThinkDelay < 0 || g.Retention < 0 || g.Work.Tick < time.Millisecond {
		return fmt.Errorf("%w: think_delay=%v retention=%v tick=%v", ErrInvalidConfig, g.ThinkDelay, g.Retention, g.Work.Tick)
	}
	if g.ChatSize < 1 {
		return fmt.Errorf("%w: chat_size=%d", ErrInvalidConfig, g.ChatSize)
	}
	if c.Advisor.Timeout <= 0 {
		return fmt.Errorf("%w: advisor timeout=%v", ErrInvalidConfig, c.Advisor.Timeout)
	}
	if c.Advisor.Enabled && c.Advisor.BaseURL == "" {
		return fmt.Errorf("%w: advisor enabled without base_url", ErrInvalidConfig)
	}
	return nil
}

// HumanSeats 需要外部输入的座位数
func (g *Game) HumanSeats() int {
	switch g.Mode {
	case ModeAI:
		return 1
	case ModeLocal:
		return g.Players
	default:
		return 0
	}
}
