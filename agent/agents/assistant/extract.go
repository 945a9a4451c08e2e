package assistant

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

// ExtractUserInput returns the text to answer. A payload is either bare text or a
// list of {role, content} messages, in which case the last user message wins.
func ExtractUserInput(payload any) (string, error) {
	var text string
	switch v := payload.(type) {
	case nil:
		return "", contractx.ErrNoUserInput
	case string:
		text = v
	case []contractx.Turn:
		for i := len(v) - 1; i >= 0; i-- {
			if v[i].Role == contractx.RoleUser {
				text = v[i].Content
				break
			}
		}
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		text = lastUserContent(items)
	case []any:
		text = lastUserContent(v)
	default:
		text = fmt.Sprint(v)
	}

	if strings.TrimSpace(text) == "" {
		return "", contractx.ErrNoUserInput
	}
	return text, nil
}

func lastUserContent(items []any) string {
	for i := len(items) - 1; i >= 0; i-- {
		m, ok := items[i].(map[string]any)
		if !ok {
			continue
		}
		if role, _ := m["role"].(string); role != string(contractx.RoleUser) {
			continue
		}
		content, _ := m["content"].(string)
		return content
	}
	return ""
}
