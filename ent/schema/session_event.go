package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records quiz session lifecycle events (start/end).
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID grouping events in a session"),
		field.String("mode").
			NotEmpty().
			Comment("training or challenge"),
		field.String("action").
			NotEmpty().
			Comment("start or end"),
		field.Int("answered").
			Default(0).
			Comment("Questions answered (on end only)"),
		field.Int("correct").
			Default(0).
			Comment("Fully correct answers (on end only)"),
		field.Int("best_streak").
			Default(0).
			Comment("Best streak seen in the session (on end only)"),
		field.Int("final_streak").
			Default(0).
			Comment("Streak when the session ended (on end only)"),
		field.Int("duration_secs").
			Default(0).
			Comment("Actual duration in seconds (on end only)"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("action"),
	}
}
