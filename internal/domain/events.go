package domain

import "time"

// Event es la forma normalizada de un evento de la plataforma.
type Event interface {
	Scope() EventScope
	isEvent()
}

// EventScope son los identificadores comunes a todas las variantes.
type EventScope struct {
	GuildID   string
	ChannelID string
	AuthorID  string
}

func (s EventScope) Scope() EventScope { return s }

type MessageEvent struct {
	EventScope
	MessageID   string
	Content     string
	AuthorRoles []string
	At          time.Time
}

type ForumThreadEvent struct {
	EventScope
	ThreadID string
	ForumID  string
	Name     string
	Tags     []string
}

type ReactionEvent struct {
	EventScope
	MessageID string
	Emoji     string
	At        time.Time
}

type CommandInvocation struct {
	EventScope
	Name        string
	Args        []string
	Options     map[string]string
	AuthorRoles []string
	At          time.Time
}

func (MessageEvent) isEvent()      {}
func (ForumThreadEvent) isEvent()  {}
func (ReactionEvent) isEvent()     {}
func (CommandInvocation) isEvent() {}
