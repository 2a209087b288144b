package core

import "strings"

const (
	AppName    = "lobug"
	AppVersion = "0.1.0"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Label is the transcript prefix: "User", "Assistant".
func (r Role) Label() string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Message is a single chat turn handed to a ChatModel.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
