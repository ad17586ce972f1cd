package table

import (
	"sync"
	"time"
)

// MessageKind 消息类型
type MessageKind string

const (
	MsgSystem  MessageKind = "system"
	MsgCombat  MessageKind = "combat"
	MsgBonus   MessageKind = "bonus"
	MsgAdvisor MessageKind = "advisor"
	MsgInfo    MessageKind = "info"
)

type Message struct {
	Kind   MessageKind `json:"kind"`
	Sender string      `json:"sender"`
	Text   string      `json:"text"`
	At     time.Time   `json:"at"`
}

// Chat 固定容量的消息环, 只保留最近 size 条
type Chat struct {
	mu   sync.RWMutex
	size int
	msgs []Message
}

func NewChat(size int) *Chat {
	if size <= 0 {
		size = 16
	}
	return &Chat{size: size, msgs: make([]Message, 0, size)}
}

func (c *Chat) Append(kind MessageKind, sender, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.msgs) == c.size {
		copy(c.msgs, c.msgs[1:])
		c.msgs = c.msgs[:c.size-1]
	}
	c.msgs = append(c.msgs, Message{Kind: kind, Sender: sender, Text: text, At: time.Now()})
}

// Messages 按时间顺序的副本
func (c *Chat) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Message(nil), c.msgs...)
}

func (c *Chat) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.msgs)
}
