package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/yola1107/lumina-ludo/internal/biz/advisor"
	"github.com/yola1107/lumina-ludo/internal/model"
)

const adviceSystem = "You are a competitive online Ludo player. Answer with JSON only."

var adviceSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"tokenId": map[string]any{
			"type":        "integer",
			"description": "Id (0-3) of the token to move; must be one of the legal ids",
		},
		"commentary": map[string]any{
			"type":        "string",
			"description": "Short human-like chat message about this move",
		},
	},
	"required": []string{"tokenId", "commentary"},
}

type adviceRepo struct {
	data *Data
}

// NewAdviceRepo 未开启远程顾问时返回 nil, 顾问只用本地启发式
func NewAdviceRepo(data *Data) advisor.AdviceRepo {
	if data.chat == nil {
		return nil
	}
	return &adviceRepo{data: data}
}

type opponentView struct {
	Name   string            `json:"name,omitempty"`
	Color  string            `json:"color"`
	Tokens []model.TokenView `json:"tokens"`
}

func (r *adviceRepo) Advise(ctx context.Context, req *advisor.Request) ([]byte, error) {
	prompt, err := advicePrompt(req)
	if err != nil {
		return nil, err
	}
	content, err := r.data.chat.complete(ctx, adviceSystem, prompt, "ludo_move", adviceSchema)
	if err != nil {
		return nil, err
	}
	cleaned := extractJSONObject(content)
	if cleaned == "" {
		return nil, errors.New("advice without json object")
	}
	return []byte(cleaned), nil
}

func advicePrompt(req *advisor.Request) (string, error) {
	mine, err := json.Marshal(req.Snapshot.Of(req.Color))
	if err != nil {
		return "", err
	}
	others := lo.FilterMap(req.Snapshot.Colors, func(c model.Color, _ int) (opponentView, bool) {
		return opponentView{Color: c.String(), Tokens: req.Snapshot.Of(c)}, c != req.Color
	})
	theirs, err := json.Marshal(others)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`You are an online Ludo player named %s playing as %s.
Dice Roll: %d.
Legal token ids: %v
Your Tokens: %s
Other Players: %s
Positions: -1 base, 0-51 own path, 52-56 home stretch, 100 finished.

Task: Choose the best tokenId from the legal ids.
Strategy priorities:
1. Capture an opponent's token if possible.
2. Move a token into the finish.
3. If roll is 6 and you have tokens in base (-1), bring one out.
4. Move the token furthest along the board to get it home.

Also provide a short, human-like chat message about this move.`,
		req.Name, req.Color, req.Dice, req.Legal, mine, theirs), nil
}
