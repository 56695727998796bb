package tui

import "github.com/Veraticus/medicoder/internal/engine"

// replyMsg carries the outcome of a conversation turn.
type replyMsg struct {
	err   error
	reply engine.Reply
}

// resetMsg carries the greeting of a fresh conversation.
type resetMsg struct {
	reply engine.Reply
}
