package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrInvalidRule = errors.New("invalid rule")

func (p PhraseMatcher) Validate() error {
	if strings.TrimSpace(p.Phrase) == "" {
		return fmt.Errorf("%w: phrase vacía", ErrInvalidRule)
	}
	if n := utf8.RuneCountInString(p.Phrase); n > MaxPhraseRunes {
		return fmt.Errorf("%w: phrase de %d caracteres (máximo %d)", ErrInvalidRule, n, MaxPhraseRunes)
	}
	if p.MatchThreshold < 0 || p.MatchThreshold > 100 {
		return fmt.Errorf("%w: threshold %d fuera de 0..100", ErrInvalidRule, p.MatchThreshold)
	}
	if p.LogChannelID == "" {
		return fmt.Errorf("%w: falta canal de log", ErrInvalidRule)
	}
	return nil
}

func (a AutoPing) Validate() error {
	switch {
	case a.GuildID == "":
		return fmt.Errorf("%w: falta guild", ErrInvalidRule)
	case a.ForumID == "":
		return fmt.Errorf("%w: falta foro", ErrInvalidRule)
	case strings.TrimSpace(a.Tag) == "":
		return fmt.Errorf("%w: falta tag", ErrInvalidRule)
	case a.RoleID == "":
		return fmt.Errorf("%w: falta rol", ErrInvalidRule)
	case a.TargetChannelID == "":
		return fmt.Errorf("%w: falta canal destino", ErrInvalidRule)
	}
	return nil
}

func (a AutoPoll) Validate() error {
	if a.GuildID == "" {
		return fmt.Errorf("%w: falta guild", ErrInvalidRule)
	}
	switch a.Mode {
	case PollModeAny, PollModeAll, "":
	default:
		return fmt.Errorf("%w: modo %q (any|all)", ErrInvalidRule, a.Mode)
	}
	if a.Mode == PollModeAll && (len(a.Channels) == 0 || len(a.Roles) == 0) {
		return fmt.Errorf("%w: modo all necesita canales y roles", ErrInvalidRule)
	}
	return nil
}
