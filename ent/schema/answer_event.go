package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AnswerEvent records one submitted or skipped answer within a session.
type AnswerEvent struct {
	ent.Schema
}

func (AnswerEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AnswerEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("Links to SessionEvent"),
		field.Int("question_id").
			Comment("Server-assigned question id"),
		field.String("prompt").
			NotEmpty().
			Comment("The question shown"),
		field.String("answer").
			Comment("What the player entered; empty on a skip"),
		field.Bool("skipped").
			Default(false).
			Comment("Whether the question was skipped"),
		field.Bool("correct").
			Comment("Server verdict"),
		field.Int("remaining").
			Default(0).
			Comment("Sub-answers still owed on a multi-answer question"),
		field.Int("streak").
			Comment("Server streak after this answer"),
		field.Int("time_ms").
			Comment("Milliseconds from submission to verdict"),
	}
}

func (AnswerEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("correct"),
	}
}
