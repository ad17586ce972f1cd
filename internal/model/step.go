package model

// Step 一次落子结果
type Step struct {
	ID       int32     // 棋子ID
	Color    Color     // 棋子颜色
	Dice     int32     // 骰子点数
	From     int32     // 起始位置
	To       int32     // 目标位置
	Captures []Capture // 击杀信息
}

// Capture 被送回基地的棋子
type Capture struct {
	ID    int32
	Color Color
	From  int32 // 被击杀前的相对位置
	Cell  int32 // 击杀发生的绝对格
}

func (s *Step) Finished() bool { return s.To == FinishedPos }

func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Captures = append([]Capture(nil), s.Captures...)
	return &cp
}
