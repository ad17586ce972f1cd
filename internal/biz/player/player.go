package player

import (
	"fmt"

	"github.com/yola1107/lumina-ludo/internal/model"
)

// Control 选子方式
type Control int32

const (
	ControlHuman   Control = iota // 外部输入
	ControlAdvisor                // 启发式/远程顾问
)

func (c Control) String() string {
	switch c {
	case ControlHuman:
		return "human"
	case ControlAdvisor:
		return "advisor"
	default:
		return fmt.Sprintf("%d", c)
	}
}

// Profile 玩家展示信息
type Profile struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// Stats 对局内统计
type Stats struct {
	Rolls    int32 // 掷骰次数
	Sixes    int32 // 掷出6的次数
	Moves    int32 // 落子次数
	Captures int32 // 击杀数
	Captured int32 // 被击杀数
	Fallback int32 // 顾问兜底次数
}

// Player 一名对局玩家. 身份创建后不变, 只有棋子位置变化
type Player struct {
	chairID int32
	color   model.Color
	profile Profile
	control Control
	tokens  []*model.Token
	stats   Stats
}

// New 绑定棋盘上该颜色的四枚棋子
func New(chairID int32, color model.Color, profile Profile, control Control, board *model.Board) (*Player, error) {
	tokens := board.Tokens(color)
	if len(tokens) != model.TokensPerColor {
		return nil, fmt.Errorf("%w: %s not on board", model.ErrInvalidColor, color)
	}
	return &Player{
		chairID: chairID,
		color:   color,
		profile: profile,
		control: control,
		tokens:  tokens,
	}, nil
}

func (p *Player) ChairID() int32         { return p.chairID }
func (p *Player) Color() model.Color     { return p.color }
func (p *Player) Name() string           { return p.profile.Name }
func (p *Player) Bio() string            { return p.profile.Bio }
func (p *Player) Profile() Profile       { return p.profile }
func (p *Player) Control() Control       { return p.control }
func (p *Player) IsHuman() bool          { return p.control == ControlHuman }
func (p *Player) Tokens() []*model.Token { return p.tokens }
func (p *Player) Stats() Stats           { return p.stats }

// FinishedCount 已到家棋子数
func (p *Player) FinishedCount() int {
	n := 0
	for _, t := range p.tokens {
		if t.IsFinished() {
			n++
		}
	}
	return n
}

// IsWinner 四枚棋子全部到家
func (p *Player) IsWinner() bool {
	return p.FinishedCount() == model.TokensPerColor
}

func (p *Player) Positions() []int32 {
	out := make([]int32, 0, len(p.tokens))
	for _, t := range p.tokens {
		out = append(out, t.Pos())
	}
	return out
}

func (p *Player) OnRoll(dice int32) {
	p.stats.Rolls++
	if dice == model.MaxDice {
		p.stats.Sixes++
	}
}

func (p *Player) OnMove(step *model.Step) {
	p.stats.Moves++
	p.stats.Captures += int32(len(step.Captures))
}

func (p *Player) OnCaptured() { p.stats.Captured++ }
func (p *Player) OnFallback() { p.stats.Fallback++ }

// Desc 调试用
func (p *Player) Desc() string {
	return fmt.Sprintf("(%d %s %q %s pos:%v home:%d/4)",
		p.chairID, p.color, p.profile.Name, p.control, p.Positions(), p.FinishedCount())
}
