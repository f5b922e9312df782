package roster

import "github.com/google/uuid"

// Entry is one row of a bulk add.
type Entry struct {
	Identity Identity
	Text     string
	Ping     Ping
	Mode     GameMode
	Avatar   *Avatar
}

// Sender delivers roster operations to clients. Implementations must be safe
// for concurrent use across viewers.
type Sender interface {
	AddEntries(v Viewer, entries []Entry) error
	RemoveEntries(v Viewer, ids []Identity) error
	SetText(v Viewer, id Identity, text string) error
	SetPing(v Viewer, id Identity, ping Ping) error
	SetAvatar(v Viewer, id Identity, avatar Avatar) error
	HideAvatar(v Viewer, id Identity) error
	SetHeaderFooter(v Viewer, header, footer string) error
	// SetGameMode mirrors a real member's game mode to the given viewers.
	SetGameMode(viewers []Viewer, subject uuid.UUID, mode GameMode) error
}

// Substituter fills external variables into text for a subject.
type Substituter interface {
	Substitute(subject Viewer, text string) string
}

// SubstituterFunc adapts a function to Substituter.
type SubstituterFunc func(subject Viewer, text string) string

func (f SubstituterFunc) Substitute(subject Viewer, text string) string { return f(subject, text) }

// Passthrough leaves text unchanged.
var Passthrough Substituter = SubstituterFunc(func(_ Viewer, text string) string { return text })
