package discord

import (
	"context"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

const modPerms = discordgo.PermissionManageMessages | discordgo.PermissionKickMembers | discordgo.PermissionBanMembers

type GuildClient interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

type guildPerms struct {
	ownerID string
	roles   map[string]int64
}

// Authorizer resuelve el nivel de un miembro: roles configurados del bot,
// dueño del guild o bits de permisos de sus roles (incluido @everyone).
type Authorizer struct {
	client     GuildClient
	adminRoles []string
	modRoles   []string
	cache      *expirable.LRU[string, guildPerms]
}

func NewAuthorizer(client GuildClient, adminRoles, modRoles []string, ttl time.Duration) *Authorizer {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Authorizer{
		client:     client,
		adminRoles: adminRoles,
		modRoles:   modRoles,
		cache:      expirable.NewLRU[string, guildPerms](256, nil, ttl),
	}
}

func (a *Authorizer) Level(ctx context.Context, guildID, userID string, roleIDs []string) (domain.Level, error) {
	if hasAny(roleIDs, a.adminRoles) {
		return domain.LevelAdmin, nil
	}

	gp, err := a.guild(ctx, guildID)
	if err != nil {
		if hasAny(roleIDs, a.modRoles) {
			return domain.LevelModerator, nil
		}
		return domain.LevelUser, err
	}
	if userID != "" && userID == gp.ownerID {
		return domain.LevelAdmin, nil
	}

	// @everyone tiene el mismo id que el guild
	perms := gp.roles[guildID]
	for _, rid := range roleIDs {
		perms |= gp.roles[rid]
	}
	switch {
	case perms&discordgo.PermissionAdministrator != 0:
		return domain.LevelAdmin, nil
	case hasAny(roleIDs, a.modRoles), perms&modPerms != 0:
		return domain.LevelModerator, nil
	}
	return domain.LevelUser, nil
}

func (a *Authorizer) guild(ctx context.Context, guildID string) (guildPerms, error) {
	if gp, ok := a.cache.Get(guildID); ok {
		return gp, nil
	}
	g, err := a.client.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return guildPerms{}, err
	}
	roles, err := a.client.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return guildPerms{}, err
	}
	gp := guildPerms{ownerID: g.OwnerID, roles: make(map[string]int64, len(roles))}
	for _, r := range roles {
		gp.roles[r.ID] = r.Permissions
	}
	a.cache.Add(guildID, gp)
	return gp, nil
}

func hasAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
