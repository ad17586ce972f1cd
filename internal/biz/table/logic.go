package table

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/yola1107/lumina-ludo/internal/biz/advisor"
	"github.com/yola1107/lumina-ludo/internal/model"
	"github.com/yola1107/lumina-ludo/library/log"
)

/*
	回合主逻辑
	AWAITING_ROLL -> ROLLED_NO_MOVES -> NEXT_TURN
	AWAITING_ROLL -> AWAITING_SELECTION -> APPLYING -> EXTRA_TURN | NEXT_TURN | MATCH_OVER
*/

func (t *Table) setStage(state StageID) {
	t.stage.Set(state)
	t.mLog.stage(t.stage.Desc(), t.active)
}

// Start 开局, 第一位玩家进入 AWAITING_ROLL. 重复调用无效果
func (t *Table) Start(ctx context.Context) {
	defer t.flush(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.turn == 0 && t.stage.GetState() != StMatchOver {
		t.startTurn()
	}
}

// Roll 当前玩家掷骰. 无棋可走时直接轮转下家, 返回空的合法集合
func (t *Table) Roll(ctx context.Context) (int32, []int32, error) {
	defer t.flush(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()

	switch st := t.stage.GetState(); st {
	case StMatchOver:
		return 0, nil, ErrMatchOver
	case StAwaitingRoll:
	default:
		return 0, nil, fmt.Errorf("%w: stage=%v", ErrNotAwaitingRoll, st)
	}
	if t.turn == 0 {
		t.startTurn()
	}

	p := t.seats[t.active].Player
	dice := t.repo.GetDice().Roll()
	if dice < 1 || dice > model.MaxDice {
		return 0, nil, fmt.Errorf("%w: dice=%d", ErrInvariant, dice)
	}
	t.extraTurn = false
	p.OnRoll(dice)

	legal := t.board.LegalMoves(p.Color(), dice)
	t.mLog.dice(p, dice, legal)
	t.push(Event{Kind: EvRollResult, Color: p.Color(), Player: p.Name(), Dice: dice, Legal: slices.Clone(legal)})

	if len(legal) == 0 {
		t.setStage(StRolledNoMoves)
		t.push(Event{Kind: EvNoLegalMove, Color: p.Color(), Player: p.Name(), Dice: dice})
		t.chat.Append(MsgInfo, p.Name(), "No valid moves.")
		t.nextTurn()
		return dice, nil, nil
	}

	t.pendingDice, t.legal = dice, legal
	t.setStage(StAwaitingSelection)
	return dice, slices.Clone(legal), nil
}

// Apply 直接落子. 不在合法集合内的ID被拒绝且不修改任何状态
func (t *Table) Apply(ctx context.Context, tokenID int32) (*model.Step, error) {
	defer t.flush(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkSelecting(); err != nil {
		return nil, err
	}
	if !lo.Contains(t.legal, tokenID) {
		return nil, fmt.Errorf("%w: id=%d legal=%v", ErrInvalidSelection, tokenID, t.legal)
	}
	return t.apply(tokenID)
}

// PlayTurn 推进一次掷骰机会: 掷骰, 向顾问要选择, 落子
func (t *Table) PlayTurn(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.turnMu.Lock()
	defer t.turnMu.Unlock()

	switch t.Stage() {
	case StMatchOver:
		return ErrMatchOver
	case StAwaitingRoll:
		_, legal, err := t.Roll(ctx)
		if err != nil {
			return err
		}
		if len(legal) == 0 {
			return nil
		}
	}
	return t.selectAndApply(ctx)
}

// Run 驱动对局直到结束或 ctx 取消
func (t *Table) Run(ctx context.Context) (Result, error) {
	t.Start(ctx)
	for !t.IsOver() {
		if err := t.PlayTurn(ctx); err != nil {
			r := t.Result()
			r.Err = err
			return r, err
		}
	}
	return t.Result(), nil
}

func (t *Table) checkSelecting() error {
	switch st := t.stage.GetState(); st {
	case StMatchOver:
		return ErrMatchOver
	case StAwaitingSelection:
		return nil
	default:
		return fmt.Errorf("%w: stage=%v", ErrNotAwaitingSelection, st)
	}
}

func (t *Table) buildRequest() (*Seat, *advisor.Request, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkSelecting(); err != nil {
		return nil, nil, err
	}
	seat := t.seats[t.active]
	return seat, &advisor.Request{
		MatchID:  t.ID,
		Color:    seat.Player.Color(),
		Name:     seat.Player.Name(),
		Dice:     t.pendingDice,
		Legal:    slices.Clone(t.legal),
		Snapshot: t.board.Snapshot(),
	}, nil
}

// selectAndApply 顾问的选择先经过合法性校验, 越界时用最小的合法ID替换并上报
func (t *Table) selectAndApply(ctx context.Context) error {
	seat, req, err := t.buildRequest()
	if err != nil {
		return err
	}
	if err = t.pace(ctx, seat); err != nil {
		return err
	}

	choice := seat.Advisor.ChooseToken(ctx, req)
	if err = ctx.Err(); err != nil {
		// 取消时不落子, 停留在 AWAITING_SELECTION
		return err
	}

	defer t.flush(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()

	if err = t.checkSelecting(); err != nil {
		return err
	}
	p := seat.Player
	if choice.Commentary != "" {
		t.chat.Append(MsgAdvisor, p.Name(), choice.Commentary)
		t.push(Event{Kind: EvAdvisorComment, Color: p.Color(), Player: p.Name(), Commentary: choice.Commentary})
	}
	if choice.Fallback {
		p.OnFallback()
		t.mLog.fallback(p, choice.TokenID, choice.TokenID, ReasonDegraded)
		t.push(Event{Kind: EvAdvisorFallback, Color: p.Color(), Player: p.Name(),
			TokenID: choice.TokenID, Requested: choice.TokenID, Reason: ReasonDegraded})
	}

	id := choice.TokenID
	if !lo.Contains(t.legal, id) {
		fb := t.legal[0]
		log.Warnf("[table] match=%s %s advisor chose %d outside %v, use %d", t.ID, p.Color(), id, t.legal, fb)
		p.OnFallback()
		t.mLog.fallback(p, id, fb, ReasonOutOfSet)
		t.push(Event{Kind: EvAdvisorFallback, Color: p.Color(), Player: p.Name(),
			TokenID: fb, Requested: id, Reason: ReasonOutOfSet})
		id = fb
	}
	_, err = t.apply(id)
	return err
}

// pace 顾问操作前的停顿, 由时间轮调度
func (t *Table) pace(ctx context.Context, seat *Seat) error {
	timer := t.repo.GetTimer()
	if seat.Player.IsHuman() || t.c.ThinkDelay <= 0 || timer == nil {
		return nil
	}
	done := make(chan struct{})
	id := timer.Once(t.c.ThinkDelay, func() { close(done) })
	if id < 0 {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		timer.Cancel(id)
		return ctx.Err()
	}
}

// apply 在锁内执行落子、击杀、胜负和轮转
func (t *Table) apply(tokenID int32) (*model.Step, error) {
	seat := t.seats[t.active]
	p := seat.Player
	dice := t.pendingDice

	t.setStage(StApplying)
	step, err := t.board.Move(p.Color(), tokenID, dice)
	if err != nil {
		t.setStage(StAwaitingSelection)
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	t.pendingDice, t.legal = 0, nil

	p.OnMove(step)
	t.mLog.move(p, step)
	t.push(Event{Kind: EvTokenMoved, Color: p.Color(), Player: p.Name(),
		Dice: dice, TokenID: step.ID, From: step.From, To: step.To})

	if len(step.Captures) > 0 {
		for _, c := range step.Captures {
			victim := t.seatByColor(c.Color)
			if victim == nil {
				continue
			}
			victim.Player.OnCaptured()
			t.chat.Append(MsgCombat, p.Name(), fmt.Sprintf("%s sent %s home!", p.Name(), victim.Player.Name()))
		}
		t.push(Event{Kind: EvCapture, Color: p.Color(), Player: p.Name(),
			TokenID: step.ID, To: step.To, Victims: slices.Clone(step.Captures)})
	}

	if p.IsWinner() {
		t.winner = seat
		t.endAt = time.Now()
		t.setStage(StMatchOver)
		t.chat.Append(MsgSystem, "System", fmt.Sprintf("%s wins!", p.Name()))
		t.push(Event{Kind: EvMatchWon, Color: p.Color(), Player: p.Name()})
		t.mLog.end(p, t.turn)
		log.Infof("MatchOver. %s winner=%s", t.Desc(), p.Desc())
		return step, nil
	}

	if dice == model.MaxDice {
		t.extraTurn = true
		t.setStage(StExtraTurn)
		t.chat.Append(MsgBonus, p.Name(), "Six rolled! Roll again.")
		t.push(Event{Kind: EvExtraTurn, Color: p.Color(), Player: p.Name(), Dice: dice})
		t.startTurn()
		return step, nil
	}

	t.nextTurn()
	return step, nil
}

func (t *Table) nextTurn() {
	prev := t.seats[t.active].Player
	t.setStage(StNextTurn)
	t.extraTurn = false
	t.pendingDice, t.legal = 0, nil
	t.active = (t.active + 1) % int32(len(t.seats))
	next := t.seats[t.active].Player
	t.push(Event{Kind: EvTurnAdvanced, Color: prev.Color(), Player: prev.Name(), Next: next.Color()})
	t.startTurn()
}

func (t *Table) startTurn() {
	t.setStage(StAwaitingRoll)
	t.turn++
	p := t.seats[t.active].Player
	t.push(Event{Kind: EvTurnStart, Color: p.Color(), Player: p.Name()})
}

func (t *Table) seatByColor(c model.Color) *Seat {
	s, _ := lo.Find(t.seats, func(s *Seat) bool { return s.Player.Color() == c })
	return s
}

// ExtraTurnPending 当前玩家是否处于奖励回合
func (t *Table) ExtraTurnPending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.extraTurn
}
