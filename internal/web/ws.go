package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/query"
	"github.com/vitos/case_index/internal/usecase"
	"github.com/vitos/case_index/internal/view"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// clientMessage is sent by the browser: {"type":"query","query":"chroma"},
// {"type":"sort","sort":"losers"}, {"type":"page","page":3} or {"type":"clear"}.
type clientMessage struct {
	Type  string `json:"type"`
	Query string `json:"query"`
	Sort  string `json:"sort"`
	Page  int    `json:"page"`
}

type snapshotMessage struct {
	Type        string            `json:"type"`
	Session     string            `json:"session"`
	RawQuery    string            `json:"raw_query"`
	Query       string            `json:"query"`
	Page        int               `json:"page"`
	SortBy      string            `json:"sort_by"`
	Status      string            `json:"status"`
	Placeholder bool              `json:"placeholder"`
	Total       int               `json:"total"`
	TotalPages  int               `json:"total_pages"`
	Pages       []string          `json:"pages"`
	Items       []domain.CaseItem `json:"items"`
	Error       string            `json:"error,omitempty"`
	HTML        string            `json:"html"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func searchViewFromSnapshot(snap usecase.SearchSnapshot) *SearchView {
	sv := &SearchView{
		Params:      snap.Params,
		Pager:       snap.Pager,
		Loading:     snap.Result.Loading(),
		Placeholder: snap.Result.IsPlaceholder,
	}
	if snap.Result.HasData {
		sv.Page = snap.Result.Data
	}
	if snap.Result.Status == query.StatusError {
		sv.Err = snap.Result.Err
	}
	return sv
}

func (s *Server) snapshotMessage(session string, snap usecase.SearchSnapshot) snapshotMessage {
	msg := snapshotMessage{
		Type:        "snapshot",
		Session:     session,
		RawQuery:    snap.RawQuery,
		Query:       snap.Params.Query,
		Page:        snap.Params.Page,
		SortBy:      string(snap.Params.SortBy),
		Status:      snap.Result.Status.String(),
		Placeholder: snap.Result.IsPlaceholder,
		TotalPages:  snap.TotalPages,
		Pages:       pageLabels(snap.Pager.Entries),
		Items:       []domain.CaseItem{},
	}
	if snap.Result.HasData && snap.Result.Data != nil {
		msg.Total = snap.Result.Data.Total
		if snap.Result.Data.Items != nil {
			msg.Items = snap.Result.Data.Items
		}
	}
	if snap.Result.Status == query.StatusError {
		msg.Error = view.ErrorMessage(snap.Result.Err)
	}

	html, err := renderFragment("results", searchViewFromSnapshot(snap))
	if err != nil {
		s.logger.Error("Template error", zap.String("template", "results"), zap.Error(err))
	}
	msg.HTML = html
	return msg
}

// handleSearchSocket runs one live search session per connection.
func (s *Server) handleSearchSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log := s.logger.With(zap.String("session", id))
	log.Debug("Search session opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	send := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	sess := s.marketService.NewSearchSession(ctx, s.debounce, func(snap usecase.SearchSnapshot) {
		if err := send(s.snapshotMessage(id, snap)); err != nil {
			log.Debug("Failed to push snapshot", zap.Error(err))
		}
	})
	defer sess.Close()
	sess.Start()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Search session read error", zap.Error(err))
			}
			log.Debug("Search session closed")
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = send(errorMessage{Type: "error", Error: "malformed message"})
			continue
		}

		switch msg.Type {
		case "query":
			sess.SetQuery(msg.Query)
		case "sort":
			sess.SetSort(domain.ParseSortOption(msg.Sort))
		case "page":
			if err := sess.GoToPage(msg.Page); err != nil {
				_ = send(errorMessage{Type: "error", Error: err.Error()})
			}
		case "clear":
			sess.Clear()
		default:
			_ = send(errorMessage{Type: "error", Error: "unknown message type " + msg.Type})
		}
	}
}
