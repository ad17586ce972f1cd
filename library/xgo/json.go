package xgo

import "encoding/json"

// ToJSON 调试输出用, 失败时返回空串
func ToJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
