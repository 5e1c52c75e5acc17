package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventsWSWriteWait = 10 * time.Second
	eventsWSPongWait  = 60 * time.Second
	eventsWSPingEvery = (eventsWSPongWait * 9) / 10
)

var eventsWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type eventsWSInbound struct {
	Type string `json:"type"`
}

type eventsWSOutbound struct {
	Type      string   `json:"type"`
	ProjectID string   `json:"projectId,omitempty"`
	Lines     []string `json:"lines,omitempty"`
	Line      string   `json:"line,omitempty"`
	Status    string   `json:"status,omitempty"`
	Port      int      `json:"port,omitempty"`
	Code      string   `json:"code,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// HandleEvents streams a project's preview log over a websocket:
// buffered history first, then live lines as the studio emits them.
func (h *ProjectsHandler) HandleEvents(w http.ResponseWriter, r *http.Request, projectID string) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		http.Error(w, "project id is required", http.StatusBadRequest)
		return
	}

	conn, err := eventsWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(eventsWSPongWait)); err != nil {
		log.Printf("events ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsWSPongWait))
	})

	writeCh := make(chan eventsWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(eventsWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	history, lines, cancelSub, subErr := h.svc.SubscribeLogs(projectID)
	if subErr != nil {
		pushEventsWS(writeCh, eventsWSOutbound{
			Type:    "error",
			Code:    "not_found",
			Message: subErr.Error(),
		})
		cancel()
		<-writerDone
		return
	}
	defer cancelSub()

	pushEventsWS(writeCh, eventsWSOutbound{
		Type:      "subscribed",
		ProjectID: projectID,
	})
	pushEventsWS(writeCh, eventsWSOutbound{
		Type:      "history",
		ProjectID: projectID,
		Lines:     history,
	})
	if e, err := h.svc.Get(ctx, projectID); err == nil {
		pushEventsWS(writeCh, eventsWSOutbound{
			Type:      "status",
			ProjectID: projectID,
			Status:    e.Project.Status,
			Port:      e.Project.Port,
		})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-lines:
				if !ok {
					return
				}
				pushEventsWS(writeCh, eventsWSOutbound{
					Type:      "log",
					ProjectID: projectID,
					Line:      line,
				})
			}
		}
	}()

	for {
		var in eventsWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushEventsWS(writeCh, eventsWSOutbound{Type: "pong"})
		case "":
			pushEventsWS(writeCh, eventsWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "type is required",
			})
		default:
			pushEventsWS(writeCh, eventsWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + in.Type,
			})
		}
	}
}

func pushEventsWS(writeCh chan eventsWSOutbound, out eventsWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
