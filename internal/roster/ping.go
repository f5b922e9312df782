package roster

import (
	"fmt"
	"strings"
)

// Ping is the simulated latency bar shown next to an entry.
type Ping int

const (
	PingFive Ping = iota
	PingFour
	PingThree
	PingTwo
	PingOne
	PingNone
)

var pingNames = map[Ping]string{
	PingFive:  "FIVE",
	PingFour:  "FOUR",
	PingThree: "THREE",
	PingTwo:   "TWO",
	PingOne:   "ONE",
	PingNone:  "NONE",
}

// Millis is the latency reported to the client for this bar count.
func (p Ping) Millis() int {
	switch p {
	case PingFour:
		return 250
	case PingThree:
		return 500
	case PingTwo:
		return 750
	case PingOne:
		return 1000
	case PingNone:
		return -1
	default:
		return 0
	}
}

func (p Ping) String() string {
	if n, ok := pingNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Ping(%d)", int(p))
}

// ParsePing accepts a bar name ("FIVE") or a bar count ("5"). Empty means PingFive.
func ParsePing(s string) (Ping, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PingFive, nil
	}
	for p, n := range pingNames {
		if n == s {
			return p, nil
		}
	}
	switch s {
	case "5":
		return PingFive, nil
	case "4":
		return PingFour, nil
	case "3":
		return PingThree, nil
	case "2":
		return PingTwo, nil
	case "1":
		return PingOne, nil
	case "0", "-1":
		return PingNone, nil
	}
	return PingFive, fmt.Errorf("unknown ping %q", s)
}

// GameMode is mirrored to clients when a member changes mode.
type GameMode int

const (
	Survival GameMode = iota
	Creative
	Adventure
	Spectator
)

func (g GameMode) String() string {
	switch g {
	case Creative:
		return "creative"
	case Adventure:
		return "adventure"
	case Spectator:
		return "spectator"
	default:
		return "survival"
	}
}

func ParseGameMode(s string) (GameMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "survival":
		return Survival, nil
	case "creative":
		return Creative, nil
	case "adventure":
		return Adventure, nil
	case "spectator":
		return Spectator, nil
	}
	return Survival, fmt.Errorf("unknown game mode %q", s)
}
