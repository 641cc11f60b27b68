package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type guildModel struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	OwnerID   uint64 `json:"owner"`
	Available bool   `json:"available"`
}

type guildStatsModel struct {
	guildModel
	Channels int `json:"channels"`
	Roles    int `json:"roles"`
	Members  int `json:"members"`
	Messages int `json:"messages"`
	InVoice  int `json:"in_voice"`
}

type roleModel struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Permissions uint64 `json:"permissions"`
	Position    int    `json:"position"`
}

// registerGetGuilds GET /guilds
func (a *API) registerGetGuilds() {
	a.router.GET("/guilds", func(c *gin.Context) {
		guilds := a.state.Guilds()
		gm := make([]guildModel, len(guilds))
		for i, g := range guilds {
			gm[i] = guildModel{ID: g.ID, Name: g.Name, OwnerID: g.OwnerID, Available: g.Available}
		}
		c.JSON(http.StatusOK, gm)
	})
}

// registerGetGuildStats GET /guilds/:guild
func (a *API) registerGetGuildStats() {
	a.router.GET("/guilds/:guild", func(c *gin.Context) {
		var param struct {
			Guild uint64 `uri:"guild"`
		}
		if err := c.ShouldBindUri(&param); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		stats, ok := a.state.Stats(param.Guild)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "guild is not cached"})
			return
		}
		c.JSON(http.StatusOK, guildStatsModel{
			guildModel: guildModel{ID: stats.Guild.ID, Name: stats.Guild.Name, OwnerID: stats.Guild.OwnerID, Available: stats.Guild.Available},
			Channels:   stats.Channels,
			Roles:      stats.Roles,
			Members:    stats.Members,
			Messages:   stats.Messages,
			InVoice:    stats.InVoice,
		})
	})
}

// registerGetMemberRoles GET /guilds/:guild/members/:member/roles
func (a *API) registerGetMemberRoles() {
	a.router.GET("/guilds/:guild/members/:member/roles", func(c *gin.Context) {
		var param struct {
			Guild  uint64 `uri:"guild"`
			Member uint64 `uri:"member"`
		}
		if err := c.ShouldBindUri(&param); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		roles := a.state.RolesOf(param.Guild, param.Member)
		rm := make([]roleModel, len(roles))
		for i, r := range roles {
			rm[i] = roleModel{ID: r.ID, Name: r.Name, Permissions: uint64(r.Permissions), Position: r.Position}
		}
		c.JSON(http.StatusOK, rm)
	})
}

// registerGetModActions GET /actions/:page
func (a *API) registerGetModActions() {
	type actionModel struct {
		ID       uint32 `json:"id"`
		Action   string `json:"action"`
		GuildID  uint64 `json:"guild"`
		ActorID  uint64 `json:"actor"`
		TargetID uint64 `json:"target"`
		Detail   string `json:"detail"`
	}

	a.router.GET("/actions/:page", func(c *gin.Context) {
		if a.storage == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "audit log is disabled"})
			return
		}
		var param struct {
			Page uint32 `uri:"page"`
		}
		if err := c.ShouldBindUri(&param); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		actions, err := a.storage.FindModActions(a.ctx, param.Page*100, 100)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		am := make([]actionModel, len(actions))
		for i, act := range actions {
			am[i] = actionModel{act.ID, act.Action, act.GuildID, act.ActorID, act.TargetID, act.Detail}
		}
		c.JSON(http.StatusOK, am)
	})
}
