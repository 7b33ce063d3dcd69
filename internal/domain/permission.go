package domain

import (
	"fmt"
	"strings"
)

// Level es el nivel de permiso efectivo de un actor. Orden total.
type Level int

const (
	LevelUser Level = iota
	LevelModerator
	LevelAdmin
)

func (l Level) AtLeast(required Level) bool { return l >= required }

func (l Level) String() string {
	switch l {
	case LevelUser:
		return "user"
	case LevelModerator:
		return "moderator"
	case LevelAdmin:
		return "admin"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "":
		return LevelUser, nil
	case "moderator", "mod":
		return LevelModerator, nil
	case "admin":
		return LevelAdmin, nil
	}
	return LevelUser, fmt.Errorf("unknown permission level %q", s)
}
