package bridge

import (
	"github.com/jask/rostertab/internal/roster"
)

// Outbound ops.
const (
	OpAdd          = "add"
	OpRemove       = "remove"
	OpText         = "text"
	OpPing         = "ping"
	OpAvatar       = "avatar"
	OpHideAvatar   = "hide_avatar"
	OpHeaderFooter = "header_footer"
	OpGameMode     = "game_mode"
	OpError        = "error"
)

// Inbound ops.
const (
	OpSetGameMode    = "game_mode"
	OpSetPermissions = "permissions"
	OpSetVars        = "vars"
	OpSetLocation    = "location"
	OpSetHidden      = "hidden"
)

// Cell addresses one synthetic entry.
type Cell struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Column int    `json:"column"`
	Row    int    `json:"row"`
}

type AvatarMessage struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature"`
}

type EntryMessage struct {
	Cell
	Text   string         `json:"text"`
	Ping   int            `json:"ping"`
	Mode   string         `json:"mode"`
	Avatar *AvatarMessage `json:"avatar,omitempty"`
}

// Message is one roster operation pushed to a client.
type Message struct {
	Op      string         `json:"op"`
	Entries []EntryMessage `json:"entries,omitempty"`
	Cells   []Cell         `json:"cells,omitempty"`
	Cell    *Cell          `json:"cell,omitempty"`
	Text    string         `json:"text,omitempty"`
	Ping    *int           `json:"ping,omitempty"`
	Avatar  *AvatarMessage `json:"avatar,omitempty"`
	Header  string         `json:"header,omitempty"`
	Footer  string         `json:"footer,omitempty"`
	Subject string         `json:"subject,omitempty"`
	Mode    string         `json:"mode,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ClientMessage is a state update sent by a client about itself.
type ClientMessage struct {
	Op          string            `json:"op"`
	Mode        string            `json:"mode,omitempty"`
	Permissions []string          `json:"permissions,omitempty"`
	Vars        map[string]string `json:"vars,omitempty"`
	Location    *roster.Location  `json:"location,omitempty"`
	Hidden      bool              `json:"hidden,omitempty"`
}

func cellOf(id roster.Identity) Cell {
	return Cell{ID: id.ID.String(), Name: id.Name, Column: id.Column, Row: id.Row}
}

func avatarOf(a *roster.Avatar) *AvatarMessage {
	if a == nil {
		return nil
	}
	return &AvatarMessage{Name: a.Name, Value: a.Value, Signature: a.Signature}
}
