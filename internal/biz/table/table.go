package table

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yola1107/lumina-ludo/internal/biz/advisor"
	"github.com/yola1107/lumina-ludo/internal/biz/player"
	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/internal/model"
	"github.com/yola1107/lumina-ludo/library/log"
)

// SeatSpec 入座参数
type SeatSpec struct {
	Color   model.Color
	Profile player.Profile
	Advisor advisor.Advisor
}

// Seat 玩家与其选子方式
type Seat struct {
	Player  *player.Player
	Advisor advisor.Advisor
}

// Human 真人座位返回其输入队列
func (s *Seat) Human() (*advisor.Human, bool) {
	h, ok := s.Advisor.(*advisor.Human)
	return h, ok
}

// Table 一局对局, 状态只由自身的回合步骤修改
type Table struct {
	ID        string    // 对局ID
	RoomCode  string    // 6位房间号
	CreatedAt time.Time //
	repo      Repo
	c         *conf.Game

	// 游戏变量
	mu          sync.RWMutex
	emitMu      sync.Mutex   // 按 seq 顺序投递
	turnMu      sync.Mutex   // 驱动回合期间持有
	stage       *Stage       // 阶段状态
	mLog        *Log         // 对局日志
	chat        *Chat        // 消息环
	board       *model.Board // 棋盘
	seats       []*Seat      // 按座位顺序
	active      int32        // 当前操作玩家
	pendingDice int32        // 待使用的点数, 0 表示没有
	legal       []int32      // 当前点数下的合法棋子
	extraTurn   bool         // 奖励回合
	winner      *Seat        // 赢家
	turn        int32        // 回合计数
	seq         int64        // 事件序号
	outbox      []Event      // 待发事件
	endAt       time.Time
}

func NewTable(roomCode string, c *conf.Game, repo Repo, specs ...SeatSpec) (*Table, error) {
	if len(specs) < 2 || len(specs) > len(model.Colors) {
		return nil, fmt.Errorf("%w: need 2-4 seats, got %d", ErrInvalidSeats, len(specs))
	}
	colors := make([]model.Color, 0, len(specs))
	for _, s := range specs {
		if s.Advisor == nil {
			return nil, fmt.Errorf("%w: %s has no advisor", ErrInvalidSeats, s.Color)
		}
		colors = append(colors, s.Color)
	}
	board, err := model.NewBoard(colors...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeats, err)
	}

	t := &Table{
		ID:        uuid.NewString(),
		RoomCode:  roomCode,
		CreatedAt: time.Now(),
		repo:      repo,
		c:         c,
		stage:     &Stage{},
		mLog:      NewTableLog(roomCode, c.LogCache),
		chat:      NewChat(c.ChatSize),
		board:     board,
		seats:     make([]*Seat, 0, len(specs)),
	}
	for i, s := range specs {
		control := player.ControlAdvisor
		if _, ok := s.Advisor.(*advisor.Human); ok {
			control = player.ControlHuman
		}
		p, err := player.New(int32(i), s.Color, s.Profile, control, board)
		if err != nil {
			return nil, err
		}
		t.seats = append(t.seats, &Seat{Player: p, Advisor: s.Advisor})
	}

	t.mLog.begin(t.Desc(), t.seats)
	t.chat.Append(MsgSystem, "System", fmt.Sprintf("Room %s: %d players joined.", roomCode, len(t.seats)))
	log.Infof("NewTable. %s", t.Desc())
	return t, nil
}

func (t *Table) Desc() string {
	return fmt.Sprintf("(M:%s R:%s seats:%d St:%v active:%d turn:%d)",
		t.ID, t.RoomCode, len(t.seats), t.stage.GetState(), t.active, t.turn)
}

func (t *Table) Stage() StageID {
	return t.stage.GetState()
}

func (t *Table) IsOver() bool {
	return t.stage.GetState() == StMatchOver
}

func (t *Table) Seats() []*Seat {
	return t.seats
}

func (t *Table) GetSeat(chair int32) *Seat {
	if chair < 0 || int(chair) >= len(t.seats) {
		return nil
	}
	return t.seats[chair]
}

func (t *Table) Active() *Seat {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seats[t.active]
}

// Pending 当前点数与合法集合
func (t *Table) Pending() (int32, []int32) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pendingDice, append([]int32(nil), t.legal...)
}

func (t *Table) Winner() *Seat {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.winner
}

func (t *Table) Turns() int32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.turn
}

// Snapshot 棋子位置只读副本
func (t *Table) Snapshot() model.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.board.Snapshot()
}

func (t *Table) Messages() []Message {
	return t.chat.Messages()
}

func (t *Table) Result() Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r := Result{MatchID: t.ID, RoomCode: t.RoomCode, Turns: t.turn}
	if t.winner != nil {
		r.Winner = t.winner.Player.Name()
		r.Color = t.winner.Player.Color()
	}
	return r
}

func (t *Table) Close() error {
	return t.mLog.Close()
}

// EndAt 对局结束时间, 未结束为零值
func (t *Table) EndAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.endAt
}

// Announce 追加一条系统消息
func (t *Table) Announce(text string) {
	t.chat.Append(MsgSystem, "System", text)
}
