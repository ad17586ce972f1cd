package table

import (
	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/library/work"
)

// Repo 抽象接口
type Repo interface {
	GetLoop() work.ITaskLoop
	GetTimer() work.Scheduler
	GetDice() Dice
	GetSink() Sink
	GetGameConfig() *conf.Game
}
