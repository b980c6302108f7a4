package protocol

import (
	"encoding/json"
	"fmt"
)

// Client → server message types.
const (
	TypeUserAccept         = "user_accept"
	TypeRequestQuestions   = "request_questions"
	TypeQuestionSkipped    = "question_skipped"
	TypeAnswerSubmission   = "answer_submission"
	TypeUserChangeLanguage = "user_change_language"
)

// Server → client message types share TypeUserAccept plus:
const (
	TypeNewQuestions = "new_questions"
	TypeAnswerResult = "answer_result"
)

// envelope is the wire form in both directions.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ClientMessage is any message the client can put on the wire.
type ClientMessage interface {
	messageType() string
}

// UserAccept is the handshake sent once per connection open.
type UserAccept struct {
	Token    string `json:"token"`
	GameMode string `json:"gameMode"`
	Language string `json:"language"`
}

// RequestQuestions asks the server to stream more questions.
type RequestQuestions struct{}

// QuestionSkipped reports a skip; the empty answer always scores wrong.
type QuestionSkipped struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
}

// AnswerSubmission carries the raw answer for a question.
type AnswerSubmission struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
}

// UserChangeLanguage switches the display language on the live session.
type UserChangeLanguage struct {
	Language string `json:"language"`
}

func (UserAccept) messageType() string         { return TypeUserAccept }
func (RequestQuestions) messageType() string   { return TypeRequestQuestions }
func (QuestionSkipped) messageType() string    { return TypeQuestionSkipped }
func (AnswerSubmission) messageType() string   { return TypeAnswerSubmission }
func (UserChangeLanguage) messageType() string { return TypeUserChangeLanguage }

// Encode wraps a client message in the wire envelope.
func Encode(msg ClientMessage) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(envelope{Type: msg.messageType(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// ServerMessage is a decoded inbound message. Exactly one payload field is
// non-nil, discriminated by Type.
type ServerMessage struct {
	Type         string
	Accept       *AcceptPayload
	NewQuestions *NewQuestionsPayload
	AnswerResult *AnswerResultPayload
}

// AcceptPayload acknowledges the handshake.
type AcceptPayload struct {
	IsUserAuthenticated bool `json:"isUserAuthenticated"`
}

// NewQuestionsPayload streams a batch of questions keyed by id.
type NewQuestionsPayload struct {
	Questions map[int]string `json:"questions"`
}

// CorrectAnswer describes one expected answer for a missed question.
type CorrectAnswer struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	ReferenceLink string `json:"referenceLink"`
}

// AnswerResultPayload is the server's verdict on a submission or skip.
type AnswerResultPayload struct {
	IsCorrect        bool            `json:"isCorrect"`
	RemainingToGuess int             `json:"remainingToGuess"`
	CurrentStreak    int             `json:"currentStreak"`
	BestStreak       int             `json:"bestStreak"`
	CorrectAnswer    []CorrectAnswer `json:"correctAnswer"`
}

// ErrSkip reports that an inbound frame carried an unknown or malformed
// message and should be dropped. The session must stay up regardless of
// what the server sends, for forward compatibility.
type ErrSkip struct {
	Reason string
}

func (e *ErrSkip) Error() string {
	return "skip message: " + e.Reason
}

// Decode parses an inbound frame. Unknown types and payloads that fail to
// parse return *ErrSkip; only a frame with no readable envelope at all is
// also an *ErrSkip, so callers can treat every error here as droppable.
func Decode(data []byte) (ServerMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ServerMessage{}, &ErrSkip{Reason: "bad envelope: " + err.Error()}
	}

	msg := ServerMessage{Type: env.Type}
	switch env.Type {
	case TypeUserAccept:
		var p AcceptPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ServerMessage{}, &ErrSkip{Reason: "bad user_accept payload"}
		}
		msg.Accept = &p

	case TypeNewQuestions:
		var p NewQuestionsPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ServerMessage{}, &ErrSkip{Reason: "bad new_questions payload"}
		}
		msg.NewQuestions = &p

	case TypeAnswerResult:
		var p AnswerResultPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ServerMessage{}, &ErrSkip{Reason: "bad answer_result payload"}
		}
		msg.AnswerResult = &p

	default:
		return ServerMessage{}, &ErrSkip{Reason: "unknown type " + env.Type}
	}

	return msg, nil
}
