package conn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rkal/geostreak/internal/protocol"
)

// quizServer is a scripted websocket endpoint. The handshake of each
// connection goes to hellos, every later frame goes to frames, and conns
// receives the server side of each socket so tests can kill it.
type quizServer struct {
	srv    *httptest.Server
	hellos chan protocol.UserAccept
	frames chan []byte
	conns  chan *websocket.Conn
}

func newQuizServer(t *testing.T) *quizServer {
	t.Helper()
	qs := &quizServer{
		hellos: make(chan protocol.UserAccept, 8),
		frames: make(chan []byte, 8),
		conns:  make(chan *websocket.Conn, 8),
	}
	upgrader := websocket.Upgrader{}
	qs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		qs.conns <- ws

		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var env struct {
			Payload protocol.UserAccept `json:"payload"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			t.Errorf("bad handshake frame: %s", data)
			return
		}
		qs.hellos <- env.Payload

		ack := `{"type":"user_accept","payload":{"isUserAuthenticated":true}}`
		if err := ws.WriteMessage(websocket.TextMessage, []byte(ack)); err != nil {
			return
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			qs.frames <- data
		}
	}))
	t.Cleanup(qs.srv.Close)
	return qs
}

func (qs *quizServer) url() string {
	return "ws" + strings.TrimPrefix(qs.srv.URL, "http")
}

func waitAccepted(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-m.Events():
			if !ok {
				t.Fatal("events closed before acceptance")
			}
			if st, isState := ev.(StateEvent); isState && st.State == StateAccepted {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for acceptance")
		}
	}
}

func TestManager_HandshakeOnOpen(t *testing.T) {
	qs := newQuizServer(t)

	m := NewManager(Config{URL: qs.url()}, func() protocol.UserAccept {
		return protocol.UserAccept{Token: "tok-1", GameMode: "challenge", Language: "en"}
	})
	m.Open(context.Background())
	defer m.Close()

	select {
	case hello := <-qs.hellos:
		if hello.Token != "tok-1" || hello.GameMode != "challenge" || hello.Language != "en" {
			t.Errorf("handshake = %+v", hello)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no handshake received")
	}

	waitAccepted(t, m)
}

func TestManager_ReconnectBudgetIsTerminal(t *testing.T) {
	// Nothing listens on this address; every dial fails.
	m := NewManager(Config{
		URL:         "ws://127.0.0.1:1/ws",
		MaxAttempts: 10,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  time.Millisecond,
	}, func() protocol.UserAccept { return protocol.UserAccept{} })
	m.Open(context.Background())
	defer m.Close()

	dials := 0
	sawTerminal := false
	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-m.Events():
			if !ok {
				if dials != 10 {
					t.Errorf("dial attempts = %d, want exactly 10", dials)
				}
				if !sawTerminal {
					t.Error("loop ended without a terminal Disconnected state")
				}
				return
			}
			st, isState := ev.(StateEvent)
			if !isState {
				continue
			}
			switch st.State {
			case StateConnecting:
				dials++
			case StateDisconnected:
				sawTerminal = true
				if st.Attempt != 10 {
					t.Errorf("terminal attempt = %d, want 10", st.Attempt)
				}
			}
		case <-deadline:
			t.Fatal("timed out waiting for budget exhaustion")
		}
	}
}

func TestManager_WakeRedialsImmediately(t *testing.T) {
	qs := newQuizServer(t)

	m := NewManager(Config{
		URL: qs.url(),
		// A backoff long enough that only the wake probe can explain a
		// second handshake arriving within the test deadline.
		BaseBackoff: time.Hour,
		MaxBackoff:  time.Hour,
	}, func() protocol.UserAccept {
		return protocol.UserAccept{Token: "tok-2", GameMode: "training", Language: "en"}
	})
	m.Open(context.Background())
	defer m.Close()

	<-qs.hellos
	serverSide := <-qs.conns
	waitAccepted(t, m)

	// Sleep kills the socket without a close frame.
	_ = serverSide.Close()
	time.Sleep(50 * time.Millisecond)
	m.Wake()

	select {
	case hello := <-qs.hellos:
		if hello.Token != "tok-2" {
			t.Errorf("replayed handshake = %+v", hello)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("wake did not replay the handshake")
	}
}

func TestManager_ChangeLanguageOnLiveChannel(t *testing.T) {
	qs := newQuizServer(t)

	m := NewManager(Config{URL: qs.url()}, func() protocol.UserAccept {
		return protocol.UserAccept{Token: "tok-3", GameMode: "training", Language: "en"}
	})
	m.Open(context.Background())
	defer m.Close()

	<-qs.hellos
	waitAccepted(t, m)

	m.ChangeLanguage("fr")

	select {
	case data := <-qs.frames:
		want := `{"type":"user_change_language","payload":{"language":"fr"}}`
		if string(data) != want {
			t.Errorf("frame = %s, want %s", data, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("language change never reached the server")
	}
}
