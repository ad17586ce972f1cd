package table

import (
	"context"
	"fmt"
)

// Select 外部输入的选子. 等待中的真人顾问收到提交; 无驱动时直接落子.
// 有驱动但真人尚未进入等待时拒绝, 调用方稍后重试
func (t *Table) Select(ctx context.Context, tokenID int32) error {
	if t.IsOver() {
		return ErrMatchOver
	}
	seat := t.Active()
	h, ok := seat.Human()
	if !ok {
		return ErrNotHumanTurn
	}
	if _, waiting := h.Pending(); waiting {
		return h.Submit(tokenID)
	}
	if !t.turnMu.TryLock() {
		return fmt.Errorf("%w: turn is driven, advisor not waiting yet", ErrNotAwaitingSelection)
	}
	defer t.turnMu.Unlock()
	_, err := t.Apply(ctx, tokenID)
	return err
}

// HumanSeats 需要外部输入的座位
func (t *Table) HumanSeats() []*Seat {
	var out []*Seat
	for _, s := range t.seats {
		if s.Player.IsHuman() {
			out = append(out, s)
		}
	}
	return out
}
