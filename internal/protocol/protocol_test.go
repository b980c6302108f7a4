package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEncode_UserAccept(t *testing.T) {
	data, err := Encode(UserAccept{Token: "tok-1", GameMode: "challenge", Language: "en"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != TypeUserAccept {
		t.Errorf("type = %q, want %q", env.Type, TypeUserAccept)
	}

	var p UserAccept
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.Token != "tok-1" || p.GameMode != "challenge" || p.Language != "en" {
		t.Errorf("payload = %+v", p)
	}
}

func TestEncode_SkipCarriesEmptyAnswer(t *testing.T) {
	data, err := Encode(QuestionSkipped{ID: 7, Answer: ""})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"type":"question_skipped","payload":{"id":7,"answer":""}}`
	if string(data) != want {
		t.Errorf("frame = %s, want %s", data, want)
	}
}

func TestDecode_NewQuestions(t *testing.T) {
	frame := `{"type":"new_questions","payload":{"questions":{"1":"FR","2":"DE"}}}`
	msg, err := Decode([]byte(frame))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.NewQuestions == nil {
		t.Fatal("expected new_questions payload")
	}
	if len(msg.NewQuestions.Questions) != 2 || msg.NewQuestions.Questions[1] != "FR" {
		t.Errorf("questions = %v", msg.NewQuestions.Questions)
	}
}

func TestDecode_AnswerResult(t *testing.T) {
	frame := `{"type":"answer_result","payload":{"isCorrect":false,"remainingToGuess":0,` +
		`"currentStreak":0,"bestStreak":12,"correctAnswer":[{"name":"Paris","code":"FR","referenceLink":"https://example.org/fr"}]}}`
	msg, err := Decode([]byte(frame))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	r := msg.AnswerResult
	if r == nil {
		t.Fatal("expected answer_result payload")
	}
	if r.IsCorrect || r.BestStreak != 12 || len(r.CorrectAnswer) != 1 {
		t.Errorf("result = %+v", r)
	}
	if r.CorrectAnswer[0].Name != "Paris" {
		t.Errorf("correct answer = %+v", r.CorrectAnswer[0])
	}
}

func TestDecode_UnknownTypeIsSkippable(t *testing.T) {
	_, err := Decode([]byte(`{"type":"server_metrics","payload":{}}`))
	var skip *ErrSkip
	if !errors.As(err, &skip) {
		t.Fatalf("err = %v, want *ErrSkip", err)
	}
}

func TestDecode_MalformedFrameIsSkippable(t *testing.T) {
	for _, frame := range []string{
		`not json at all`,
		`{"type":"answer_result","payload":"nope"}`,
		`{"type":"new_questions","payload":{"questions":{"x":"FR"}}}`,
	} {
		_, err := Decode([]byte(frame))
		var skip *ErrSkip
		if !errors.As(err, &skip) {
			t.Errorf("frame %q: err = %v, want *ErrSkip", frame, err)
		}
	}
}
