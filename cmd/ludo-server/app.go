package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yola1107/lumina-ludo/internal/biz"
	"github.com/yola1107/lumina-ludo/internal/biz/advisor"
	"github.com/yola1107/lumina-ludo/internal/biz/table"
	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/library/log"
)

var errBadInput = errors.New("input: <token> or <room> <token>")

// app 命令行宿主: 组桌, 读取真人输入, 跑完后打印结果
type app struct {
	c   *conf.Bootstrap
	uc  *biz.Usecase
	in  io.Reader
	out io.Writer
}

func newApp(c *conf.Bootstrap, uc *biz.Usecase) *app {
	return &app{c: c, uc: uc, in: os.Stdin, out: os.Stdout}
}

func (a *app) Run(ctx context.Context) error {
	mgr := a.uc.Manager()
	if err := mgr.Start(); err != nil {
		return err
	}
	defer mgr.Close()

	tables, err := a.uc.NewMatches(ctx, a.c.Game.Matches, advisor.WithPrompt(a.prompt))
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintf(a.out, "room %s:", t.RoomCode)
		for _, s := range t.Seats() {
			fmt.Fprintf(a.out, " %s(%s)", s.Player.Name(), s.Player.Color())
		}
		fmt.Fprintln(a.out)
	}

	if a.c.Game.HumanSeats() > 0 {
		go a.readInput(ctx, tables)
	}

	results, err := a.uc.RunMatches(ctx, tables)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(a.out, "room %s: stopped after %d turns (%v)\n", r.RoomCode, r.Turns, r.Err)
			continue
		}
		fmt.Fprintf(a.out, "room %s: %s (%s) wins after %d turns\n", r.RoomCode, r.Winner, r.Color, r.Turns)
	}
	return err
}

func (a *app) prompt(req *advisor.Request) {
	fmt.Fprintf(a.out, "[%s] %s (%s) rolled %d, choose a token %v: ", a.roomOf(req.MatchID), req.Name, req.Color, req.Dice, req.Legal)
}

func (a *app) roomOf(matchID string) string {
	if t := a.uc.Manager().GetTable(matchID); t != nil {
		return t.RoomCode
	}
	return matchID
}

// readInput 每行 "<token>" 或 "<room> <token>"
func (a *app) readInput(ctx context.Context, tables []*table.Table) {
	sc := bufio.NewScanner(a.in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := a.handleLine(ctx, tables, line); err != nil {
			fmt.Fprintf(a.out, "rejected: %v\n", err)
		}
	}
	if err := sc.Err(); err != nil {
		log.Warnf("read input: %v", err)
	}
}

func (a *app) handleLine(ctx context.Context, tables []*table.Table, line string) error {
	fields := strings.Fields(line)
	var t *table.Table
	switch len(fields) {
	case 1:
		if len(tables) != 1 {
			return errBadInput
		}
		t = tables[0]
	case 2:
		t = a.uc.Manager().GetTableByRoom(fields[0])
		if t == nil {
			return fmt.Errorf("unknown room %q", fields[0])
		}
	default:
		return errBadInput
	}
	id, err := strconv.ParseInt(fields[len(fields)-1], 10, 32)
	if err != nil {
		return errBadInput
	}
	return t.Select(ctx, int32(id))
}
