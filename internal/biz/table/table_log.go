package table

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yola1107/lumina-ludo/internal/biz/player"
	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/internal/model"
	"github.com/yola1107/lumina-ludo/library/log/file"
	"github.com/yola1107/lumina-ludo/library/xgo"
)

const logFileName = "match_%s.log"

// Log 单局日志, 未开启时所有写入为空操作
type Log struct {
	c      conf.LogCache
	logger *file.Log
}

func NewTableLog(roomCode string, c conf.LogCache) *Log {
	l := &Log{c: c}
	if c.Open {
		l.logger = file.NewFileLog(filepath.Join(c.Dir, fmt.Sprintf(logFileName, roomCode)))
	}
	return l
}

func (l *Log) Close() error {
	if l.logger == nil {
		return nil
	}
	return l.logger.Close()
}

// write 写入到对局日志文件
func (l *Log) write(msg string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.WriteLog(msg, args...)
}

func (l *Log) begin(tb string, seats []*Seat) {
	logs := []string{fmt.Sprintf("[游戏开始] %s", tb)}
	for _, s := range seats {
		logs = append(logs, fmt.Sprintf("玩家:%+v", s.Player.Desc()))
	}
	l.write(strings.Join(logs, "\r\n"))
}

func (l *Log) stage(s string, active int32) {
	l.write("[状态转移] %s. active=%+v", s, active)
}

func (l *Log) dice(p *player.Player, dice int32, legal []int32) {
	l.write("[玩家掷骰] 玩家:%+v. dice=%d, legal=%v", p.Desc(), dice, legal)
}

func (l *Log) move(p *player.Player, step *model.Step) {
	eatStr := ""
	if len(step.Captures) > 0 {
		eatStr = fmt.Sprintf("(cnt=%d,e=%v)", len(step.Captures), xgo.ToJSON(step.Captures))
	}
	l.write("[玩家移动] 玩家:%+v. [id=%d, x=%d] %d->%d, eat=%s",
		p.Desc(), step.ID, step.Dice, step.From, step.To, eatStr)
}

func (l *Log) fallback(p *player.Player, want, got int32, reason string) {
	l.write("[顾问兜底] 玩家:%+v. want=%d use=%d reason=%s", p.Desc(), want, got, reason)
}

func (l *Log) end(winner *player.Player, turns int32) {
	l.write("[GameEnd] <赢家>:%+v turns=%d", winner.Desc(), turns)
	l.write("\r\n\r\n\r\n")
}
