package entity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
)

type ID = uint32

// ModAction is one audited moderation action (ban, prune, leave).
type ModAction struct {
	ID        ID
	Action    string
	GuildID   uint64
	ActorID   uint64
	TargetID  uint64
	Detail    string
	CreatedAt time.Time
}

func NewModAction(action string, guildID, actorID, targetID uint64, detail string) *ModAction {
	return &ModAction{Action: action, GuildID: guildID, ActorID: actorID, TargetID: targetID, Detail: detail}
}

func CreateModAction(ctx context.Context, tx pgx.Tx, a *ModAction) error {
	return query(ctx, tx,
		`insert into mod_action (action, guild_id, actor_id, target_id, detail) values ($1, $2, $3, $4, $5) returning id, created_at`,
		[]interface{}{a.Action, a.GuildID, a.ActorID, a.TargetID, a.Detail},
		[]interface{}{&a.ID, &a.CreatedAt},
		func(pgx.QueryFuncRow) error { return nil })
}

func FindModActions(ctx context.Context, tx pgx.Tx, offset, limit uint32) ([]*ModAction, error) {
	var actions []*ModAction
	a := &ModAction{}
	err := query(ctx, tx,
		`select id, action, guild_id, actor_id, target_id, detail, created_at from mod_action order by id desc offset $1 limit $2`,
		[]interface{}{offset, limit},
		[]interface{}{&a.ID, &a.Action, &a.GuildID, &a.ActorID, &a.TargetID, &a.Detail, &a.CreatedAt},
		func(pgx.QueryFuncRow) error {
			row := *a
			actions = append(actions, &row)
			return nil
		})
	return actions, err
}
