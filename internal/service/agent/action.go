package agent

import "strings"

type Action string

const (
	ActionRespond Action = "respond"
	ActionIgnore  Action = "ignore"
	ActionReact   Action = "react"
)

const (
	ignorePrefix = "[IGNORE]"
	reactPrefix  = "[REACT]"
)

// ParseAction splits the action prefix off a raw model reply. A reply with
// no recognized prefix is spoken as is.
func ParseAction(raw string) (Action, string) {
	text := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(text, ignorePrefix):
		return ActionIgnore, strings.TrimSpace(text[len(ignorePrefix):])
	case strings.HasPrefix(text, reactPrefix):
		return ActionReact, strings.TrimSpace(text[len(reactPrefix):])
	}
	return ActionRespond, text
}
