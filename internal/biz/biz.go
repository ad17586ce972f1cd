package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/wire"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/yola1107/lumina-ludo/internal/biz/advisor"
	"github.com/yola1107/lumina-ludo/internal/biz/player"
	"github.com/yola1107/lumina-ludo/internal/biz/table"
	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/internal/model"
	"github.com/yola1107/lumina-ludo/library/log"
	"github.com/yola1107/lumina-ludo/library/xgo"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewUsecase, table.NewManager)

const (
	humanName      = "You"
	placeholderBio = "Ready to win!"
	roomAlphabet   = "0123456789"
	roomCodeLen    = 6
)

// ProfileRepo 对手资料来源
type ProfileRepo interface {
	Generate(ctx context.Context, count int) ([]player.Profile, error)
}

type Usecase struct {
	c        *conf.Bootstrap
	repo     table.Repo
	advice   advisor.AdviceRepo
	profiles ProfileRepo
	mgr      *table.Manager
}

func NewUsecase(c *conf.Bootstrap, repo table.Repo, advice advisor.AdviceRepo, profiles ProfileRepo, mgr *table.Manager) *Usecase {
	return &Usecase{c: c, repo: repo, advice: advice, profiles: profiles, mgr: mgr}
}

func (uc *Usecase) Manager() *table.Manager { return uc.mgr }

// NewMatch 按配置模式组桌. opts 作用于每个真人座位
func (uc *Usecase) NewMatch(ctx context.Context, opts ...advisor.HumanOption) (*table.Table, error) {
	code, err := gonanoid.Generate(roomAlphabet, roomCodeLen)
	if err != nil {
		return nil, fmt.Errorf("room code: %w", err)
	}

	g := &uc.c.Game
	var (
		specs    []table.SeatSpec
		announce string
	)
	switch g.Mode {
	case conf.ModeAI:
		profiles := uc.opponentProfiles(ctx, model.Colors[1:])
		specs = append(specs, table.SeatSpec{Color: model.Colors[0], Profile: player.Profile{Name: humanName}, Advisor: advisor.NewHuman(opts...)})
		for i, c := range model.Colors[1:] {
			specs = append(specs, table.SeatSpec{Color: c, Profile: profiles[i], Advisor: uc.newAdvisor()})
		}
		announce = "Vs AI Mode Activated"
	case conf.ModeLocal:
		for i, c := range model.Colors[:g.Players] {
			specs = append(specs, table.SeatSpec{Color: c, Profile: player.Profile{Name: fmt.Sprintf("Player %d", i+1)}, Advisor: advisor.NewHuman(opts...)})
		}
		announce = "Local Multiplayer Mode Activated"
	case conf.ModeBots:
		profiles := uc.opponentProfiles(ctx, model.Colors)
		for i, c := range model.Colors {
			specs = append(specs, table.SeatSpec{Color: c, Profile: profiles[i], Advisor: uc.newAdvisor()})
		}
		announce = "Bots Mode Activated"
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", conf.ErrInvalidConfig, g.Mode)
	}

	t, err := table.NewTable(code, g, uc.repo, specs...)
	if err != nil {
		return nil, err
	}
	t.Announce(announce)
	uc.mgr.Add(t)
	return t, nil
}

// NewMatches 一次创建 n 局
func (uc *Usecase) NewMatches(ctx context.Context, n int, opts ...advisor.HumanOption) ([]*table.Table, error) {
	tables := make([]*table.Table, 0, n)
	for i := 0; i < n; i++ {
		t, err := uc.NewMatch(ctx, opts...)
		if err != nil {
			return tables, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// RunMatches 并发跑完给定对局
func (uc *Usecase) RunMatches(ctx context.Context, tables []*table.Table) ([]table.Result, error) {
	return uc.mgr.RunAll(ctx, tables, uc.c.Game.Parallel)
}

func (uc *Usecase) newAdvisor() advisor.Advisor {
	var exec advisor.Executor
	if loop := uc.repo.GetLoop(); loop != nil {
		exec = loop
	}
	return advisor.NewHeuristic(uc.advice,
		advisor.WithTimeout(uc.c.Advisor.Timeout),
		advisor.WithExecutor(exec),
	)
}

// opponentProfiles 每个颜色一份资料, 远程失败时用占位资料
func (uc *Usecase) opponentProfiles(ctx context.Context, colors []model.Color) []player.Profile {
	out := make([]player.Profile, len(colors))
	var got []player.Profile
	if uc.profiles != nil {
		ps, err := uc.profiles.Generate(ctx, len(colors))
		if err != nil {
			log.Warnf("generate profiles failed, use placeholders: %v", err)
			for i := range out {
				out[i] = player.Profile{Name: fmt.Sprintf("Player_%04d", xgo.RandIntInclusive(0, 9999)), Bio: placeholderBio}
			}
			return out
		}
		got = ps
	}
	for i, c := range colors {
		if i < len(got) {
			out[i] = got[i]
		}
		if strings.TrimSpace(out[i].Name) == "" {
			out[i].Name = "Bot_" + c.String()
		}
	}
	return out
}
