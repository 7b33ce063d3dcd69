package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// RuleFile es el formato YAML de `bot import`.
type RuleFile struct {
	Phrases []struct {
		GuildID      string `yaml:"guild_id"`
		Phrase       string `yaml:"phrase"`
		Threshold    *int   `yaml:"threshold"`
		LogChannelID string `yaml:"log_channel_id"`
	} `yaml:"phrases"`
	AutoPings []struct {
		GuildID         string `yaml:"guild_id"`
		ForumID         string `yaml:"forum_id"`
		Tag             string `yaml:"tag"`
		RoleID          string `yaml:"role_id"`
		TargetChannelID string `yaml:"target_channel_id"`
	} `yaml:"autopings"`
	AutoPolls []struct {
		GuildID  string   `yaml:"guild_id"`
		Mode     string   `yaml:"mode"`
		Channels []string `yaml:"channels"`
		Roles    []string `yaml:"roles"`
		Emojis   []string `yaml:"emojis"`
	} `yaml:"autopolls"`
}

type ImportReport struct {
	Phrases   int
	AutoPings int
	AutoPolls int
}

type Importer struct {
	Phrases   PhraseRepo
	AutoPings AutoPingRepo
	AutoPolls AutoPollRepo
}

func (im Importer) ImportFile(ctx context.Context, path string) (ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportReport{}, err
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import valida el archivo completo antes de escribir. Si falla una escritura
// a mitad de camino, lo creado hasta ahí queda.
func (im Importer) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	var rf RuleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return ImportReport{}, fmt.Errorf("parse rules: %w", err)
	}

	phrases := make([]domain.PhraseMatcher, 0, len(rf.Phrases))
	for i, p := range rf.Phrases {
		pm := domain.PhraseMatcher{
			GuildID:        p.GuildID,
			Phrase:         p.Phrase,
			MatchThreshold: domain.DefaultMatchThreshold,
			LogChannelID:   p.LogChannelID,
		}
		if p.Threshold != nil {
			pm.MatchThreshold = *p.Threshold
		}
		if err := pm.Validate(); err != nil {
			return ImportReport{}, fmt.Errorf("phrases[%d]: %w", i, err)
		}
		phrases = append(phrases, pm)
	}

	pings := make([]domain.AutoPing, 0, len(rf.AutoPings))
	for i, a := range rf.AutoPings {
		ap := domain.AutoPing{GuildID: a.GuildID, ForumID: a.ForumID, Tag: a.Tag, RoleID: a.RoleID, TargetChannelID: a.TargetChannelID}
		if err := ap.Validate(); err != nil {
			return ImportReport{}, fmt.Errorf("autopings[%d]: %w", i, err)
		}
		pings = append(pings, ap)
	}

	polls := make([]domain.AutoPoll, 0, len(rf.AutoPolls))
	for i, a := range rf.AutoPolls {
		ap := domain.AutoPoll{GuildID: a.GuildID, Mode: domain.PollMode(a.Mode), Channels: a.Channels, Roles: a.Roles, Emojis: a.Emojis}
		if ap.Mode == "" {
			ap.Mode = domain.PollModeAny
		}
		if err := ap.Validate(); err != nil {
			return ImportReport{}, fmt.Errorf("autopolls[%d]: %w", i, err)
		}
		polls = append(polls, ap)
	}

	var rep ImportReport
	for _, p := range phrases {
		if _, err := im.Phrases.Create(ctx, p); err != nil {
			return rep, fmt.Errorf("create phrase %q: %w", p.Phrase, err)
		}
		rep.Phrases++
	}
	for _, a := range pings {
		if _, err := im.AutoPings.Create(ctx, a); err != nil {
			return rep, fmt.Errorf("create autoping %s/%s: %w", a.ForumID, a.Tag, err)
		}
		rep.AutoPings++
	}
	for _, a := range polls {
		if _, err := im.AutoPolls.Create(ctx, a); err != nil {
			return rep, fmt.Errorf("create autopoll: %w", err)
		}
		rep.AutoPolls++
	}
	return rep, nil
}
