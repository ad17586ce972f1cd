package table

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yola1107/lumina-ludo/library/log"
	"github.com/yola1107/lumina-ludo/library/xgo"
)

const defaultReapInterval = time.Minute

// Manager 管理进程内的所有对局, 每局在协程池中独立运行
type Manager struct {
	repo     Repo
	tableMap sync.Map // map[string]*Table
	reapID   int64
}

func NewManager(repo Repo) *Manager {
	return &Manager{repo: repo, reapID: -1}
}

// Start 注册已结束对局的定时清理
func (m *Manager) Start() error {
	retention := m.repo.GetGameConfig().Retention
	timer := m.repo.GetTimer()
	if retention <= 0 || timer == nil {
		return nil
	}
	interval := min(retention, defaultReapInterval)
	m.reapID = timer.Forever(interval, func() { m.Reap(retention) })
	return nil
}

func (m *Manager) Close() {
	if timer := m.repo.GetTimer(); timer != nil && m.reapID >= 0 {
		timer.Cancel(m.reapID)
	}
	m.tableMap.Range(func(k, v any) bool {
		_ = v.(*Table).Close()
		m.tableMap.Delete(k)
		return true
	})
}

func (m *Manager) Add(t *Table) {
	m.tableMap.Store(t.ID, t)
}

func (m *Manager) GetTable(id string) *Table {
	if v, ok := m.tableMap.Load(id); ok {
		return v.(*Table)
	}
	return nil
}

// GetTableByRoom 按房间号查找
func (m *Manager) GetTableByRoom(code string) *Table {
	var found *Table
	m.tableMap.Range(func(_, v any) bool {
		if t := v.(*Table); t.RoomCode == code {
			found = t
			return false
		}
		return true
	})
	return found
}

// GetTableList 按创建时间排序
func (m *Manager) GetTableList() []*Table {
	var tables []*Table
	m.tableMap.Range(func(_, v any) bool {
		tables = append(tables, v.(*Table))
		return true
	})
	sort.Slice(tables, func(i, j int) bool { return tables[i].CreatedAt.Before(tables[j].CreatedAt) })
	return tables
}

func (m *Manager) Remove(id string) {
	if v, ok := m.tableMap.LoadAndDelete(id); ok {
		_ = v.(*Table).Close()
	}
}

// Reap 移除结束超过 retention 的对局
func (m *Manager) Reap(retention time.Duration) int {
	n := 0
	for _, t := range m.GetTableList() {
		if end := t.EndAt(); t.IsOver() && !end.IsZero() && time.Since(end) >= retention {
			m.Remove(t.ID)
			n++
		}
	}
	if n > 0 {
		log.Infof("[manager] reaped %d finished matches", n)
	}
	return n
}

// Run 在独立协程中驱动对局, 结束后从返回的 channel 取结果.
// 协程池只承接顾问调用和定时回调, 对局本身不占用 worker
func (m *Manager) Run(ctx context.Context, t *Table) <-chan Result {
	ch := make(chan Result, 1)
	m.Add(t)
	go func() {
		defer xgo.RecoverFromError(func(e any) {
			ch <- Result{MatchID: t.ID, RoomCode: t.RoomCode, Err: fmt.Errorf("%w: panic: %v", ErrInvariant, e)}
		})
		r, err := t.Run(ctx)
		if err != nil {
			log.Warnf("[manager] match=%s room=%s stopped: %v", t.ID, t.RoomCode, err)
		}
		ch <- r
	}()
	return ch
}

// RunAll 并发运行一批对局, 最多 parallel 局同时进行. 任一局出错即取消其余
func (m *Manager) RunAll(ctx context.Context, tables []*Table, parallel int) ([]Result, error) {
	results := make([]Result, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, t := range tables {
		i, t := i, t
		g.Go(func() error {
			select {
			case r := <-m.Run(gctx, t):
				results[i] = r
				if r.Err != nil {
					return fmt.Errorf("match %s: %w", t.RoomCode, r.Err)
				}
				return nil
			case <-gctx.Done():
				results[i] = Result{MatchID: t.ID, RoomCode: t.RoomCode, Err: gctx.Err()}
				return gctx.Err()
			}
		})
	}
	err := g.Wait()
	return results, err
}
