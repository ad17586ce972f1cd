package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yola1107/lumina-ludo/internal/biz"
	"github.com/yola1107/lumina-ludo/internal/biz/player"
)

const profileSystem = "You generate player profiles for an online Ludo game. Answer with JSON only."

var profileSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"profiles": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
					"bio":  map[string]any{"type": "string"},
				},
				"required": []string{"name", "bio"},
			},
		},
	},
	"required": []string{"profiles"},
}

type profileRepo struct {
	data *Data
}

// NewProfileRepo 未开启远程生成时返回 nil
func NewProfileRepo(data *Data) biz.ProfileRepo {
	if data.chat == nil || !data.c.Advisor.Profiles {
		return nil
	}
	return &profileRepo{data: data}
}

func (r *profileRepo) Generate(ctx context.Context, count int) ([]player.Profile, error) {
	prompt := fmt.Sprintf("Generate %d unique, trendy usernames and short 1-sentence bios for players in an online Ludo game.", count)
	content, err := r.data.chat.complete(ctx, profileSystem, prompt, "ludo_profiles", profileSchema)
	if err != nil {
		return nil, err
	}
	cleaned := extractJSONObject(content)
	if cleaned == "" {
		return nil, errors.New("profiles without json object")
	}
	var out struct {
		Profiles []player.Profile `json:"profiles"`
	}
	if err = json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return out.Profiles, nil
}
