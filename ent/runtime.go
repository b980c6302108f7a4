// Code generated by ent, DO NOT EDIT.

package ent

import (
	"time"

	"github.com/rkal/geostreak/ent/answerevent"
	"github.com/rkal/geostreak/ent/schema"
	"github.com/rkal/geostreak/ent/sessionevent"
)

// The init function reads all schema descriptors with runtime code
// (default values, validators, hooks and policies) and stitches it
// to their package variables.
func init() {
	answereventMixin := schema.AnswerEvent{}.Mixin()
	answereventMixinFields0 := answereventMixin[0].Fields()
	_ = answereventMixinFields0
	answereventFields := schema.AnswerEvent{}.Fields()
	_ = answereventFields
	// answereventDescTimestamp is the schema descriptor for timestamp field.
	answereventDescTimestamp := answereventMixinFields0[1].Descriptor()
	// answerevent.DefaultTimestamp holds the default value on creation for the timestamp field.
	answerevent.DefaultTimestamp = answereventDescTimestamp.Default.(func() time.Time)
	// answereventDescSessionID is the schema descriptor for session_id field.
	answereventDescSessionID := answereventFields[0].Descriptor()
	// answerevent.SessionIDValidator is a validator for the "session_id" field. It is called by the builders before save.
	answerevent.SessionIDValidator = answereventDescSessionID.Validators[0].(func(string) error)
	// answereventDescPrompt is the schema descriptor for prompt field.
	answereventDescPrompt := answereventFields[2].Descriptor()
	// answerevent.PromptValidator is a validator for the "prompt" field. It is called by the builders before save.
	answerevent.PromptValidator = answereventDescPrompt.Validators[0].(func(string) error)
	// answereventDescSkipped is the schema descriptor for skipped field.
	answereventDescSkipped := answereventFields[4].Descriptor()
	// answerevent.DefaultSkipped holds the default value on creation for the skipped field.
	answerevent.DefaultSkipped = answereventDescSkipped.Default.(bool)
	// answereventDescRemaining is the schema descriptor for remaining field.
	answereventDescRemaining := answereventFields[6].Descriptor()
	// answerevent.DefaultRemaining holds the default value on creation for the remaining field.
	answerevent.DefaultRemaining = answereventDescRemaining.Default.(int)
	sessioneventMixin := schema.SessionEvent{}.Mixin()
	sessioneventMixinFields0 := sessioneventMixin[0].Fields()
	_ = sessioneventMixinFields0
	sessioneventFields := schema.SessionEvent{}.Fields()
	_ = sessioneventFields
	// sessioneventDescTimestamp is the schema descriptor for timestamp field.
	sessioneventDescTimestamp := sessioneventMixinFields0[1].Descriptor()
	// sessionevent.DefaultTimestamp holds the default value on creation for the timestamp field.
	sessionevent.DefaultTimestamp = sessioneventDescTimestamp.Default.(func() time.Time)
	// sessioneventDescSessionID is the schema descriptor for session_id field.
	sessioneventDescSessionID := sessioneventFields[0].Descriptor()
	// sessionevent.SessionIDValidator is a validator for the "session_id" field. It is called by the builders before save.
	sessionevent.SessionIDValidator = sessioneventDescSessionID.Validators[0].(func(string) error)
	// sessioneventDescMode is the schema descriptor for mode field.
	sessioneventDescMode := sessioneventFields[1].Descriptor()
	// sessionevent.ModeValidator is a validator for the "mode" field. It is called by the builders before save.
	sessionevent.ModeValidator = sessioneventDescMode.Validators[0].(func(string) error)
	// sessioneventDescAction is the schema descriptor for action field.
	sessioneventDescAction := sessioneventFields[2].Descriptor()
	// sessionevent.ActionValidator is a validator for the "action" field. It is called by the builders before save.
	sessionevent.ActionValidator = sessioneventDescAction.Validators[0].(func(string) error)
	// sessioneventDescAnswered is the schema descriptor for answered field.
	sessioneventDescAnswered := sessioneventFields[3].Descriptor()
	// sessionevent.DefaultAnswered holds the default value on creation for the answered field.
	sessionevent.DefaultAnswered = sessioneventDescAnswered.Default.(int)
	// sessioneventDescCorrect is the schema descriptor for correct field.
	sessioneventDescCorrect := sessioneventFields[4].Descriptor()
	// sessionevent.DefaultCorrect holds the default value on creation for the correct field.
	sessionevent.DefaultCorrect = sessioneventDescCorrect.Default.(int)
	// sessioneventDescBestStreak is the schema descriptor for best_streak field.
	sessioneventDescBestStreak := sessioneventFields[5].Descriptor()
	// sessionevent.DefaultBestStreak holds the default value on creation for the best_streak field.
	sessionevent.DefaultBestStreak = sessioneventDescBestStreak.Default.(int)
	// sessioneventDescFinalStreak is the schema descriptor for final_streak field.
	sessioneventDescFinalStreak := sessioneventFields[6].Descriptor()
	// sessionevent.DefaultFinalStreak holds the default value on creation for the final_streak field.
	sessionevent.DefaultFinalStreak = sessioneventDescFinalStreak.Default.(int)
	// sessioneventDescDurationSecs is the schema descriptor for duration_secs field.
	sessioneventDescDurationSecs := sessioneventFields[7].Descriptor()
	// sessionevent.DefaultDurationSecs holds the default value on creation for the duration_secs field.
	sessionevent.DefaultDurationSecs = sessioneventDescDurationSecs.Default.(int)
}
