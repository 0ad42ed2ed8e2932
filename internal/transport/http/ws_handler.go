package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
	"github.com/gorilla/websocket"
)

// SessionHandler exposes the quiz-taking session over a websocket: the server
// pushes countdown/state snapshots, the client streams answer edits,
// pause/resume, and the final submit.
type SessionHandler struct {
	service   *app.SubmitService
	quizzes   app.QuizRepository
	registry  app.SessionRegistry
	progress  app.ProgressStore
	saveEvery int
	upgrader  websocket.Upgrader
}

func NewSessionHandler(service *app.SubmitService, quizzes app.QuizRepository, registry app.SessionRegistry, progress app.ProgressStore, saveEvery int) *SessionHandler {
	return &SessionHandler{
		service:   service,
		quizzes:   quizzes,
		registry:  registry,
		progress:  progress,
		saveEvery: saveEvery,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string   `json:"questionId"`
	Text       string   `json:"text"`
	Selections []string `json:"selections"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and binds the connection to the participant's
// session, creating (or reattaching to) the timer keyed by (token, nij).
func (h *SessionHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	nij := r.URL.Query().Get("nij")
	name := r.URL.Query().Get("name")
	if token == "" || nij == "" || name == "" {
		http.Error(w, "missing token, nij, or name", http.StatusBadRequest)
		return
	}

	quiz, err := h.quizzes.GetQuizByToken(r.Context(), token)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := quiz.ID + ":" + domain.NormalizeNIJ(nij)
	restored, err := h.progress.Load(r.Context(), sessionID)
	if err != nil {
		// Losing a stale buffer is acceptable; losing the session is not.
		log.Printf("session %s: restore progress: %v", sessionID, err)
	}

	session, created := h.registry.GetOrCreate(sessionID, func() *app.Session {
		return app.NewSession(app.SessionConfig{
			ID:             sessionID,
			QuizToken:      token,
			Participant:    domain.Participant{Name: name, NIJ: nij},
			TimeLimitSec:   quiz.TimeLimitSec,
			SaveEveryTicks: h.saveEvery,
			Restored:       restored,
		}, h.progress, h.service.Submit)
	})
	session.Attach()
	defer func() {
		// The timer outlives the connection that started it: a refresh
		// reattaches to the same countdown. Only when the last connection
		// departs is the session abandoned, with nothing recorded.
		if session.Detach() == 0 {
			session.Stop()
			h.registry.Delete(sessionID)
		}
	}()
	if created {
		go func() {
			session.Run(context.Background())
			h.registry.Delete(sessionID)
		}()
	}

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: snapshot}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuestionID == "" {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			if err := session.SetAnswer(domain.AttemptAnswer{
				QuestionID: payload.QuestionID,
				Text:       payload.Text,
				Selections: payload.Selections,
			}); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "pause":
			if err := session.Pause(); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "resume":
			if err := session.Resume(); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "submit":
			if err := session.Submit(r.Context()); err != nil {
				if errors.Is(err, domain.ErrSessionClosed) {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
					continue
				}
				// Retry affordance: the session stays open, the client may submit again.
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "submission failed, please try again"}}
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: domain.SubmitResult{Success: true, Message: "submission received"}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
