package replay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	apperrors "github.com/louisbranch/pocketduel/internal/platform/errors"
	"github.com/louisbranch/pocketduel/internal/platform/i18n/catalog"
	platformotel "github.com/louisbranch/pocketduel/internal/platform/otel"
	"github.com/louisbranch/pocketduel/internal/platform/requestctx"
	"github.com/louisbranch/pocketduel/internal/platform/timeouts"
	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	"github.com/louisbranch/pocketduel/internal/services/battle/content"
	"github.com/louisbranch/pocketduel/internal/services/battle/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
)

const maxRequestBody = 1 << 20

// Frame types sent over a replay socket.
const (
	FrameLine = "line"
	FrameEnd  = "end"
)

// Frame is one JSON message on a replay socket. Index is the line
// position on line frames and the total line count on the end frame.
type Frame struct {
	Type   string `json:"type"`
	Index  int    `json:"index"`
	Line   string `json:"line,omitempty"`
	Winner string `json:"winner,omitempty"`
	Turns  int    `json:"turns,omitempty"`
}

// Battle is the JSON shape of a stored battle.
type Battle struct {
	ID               string    `json:"id"`
	Seed             int64     `json:"seed"`
	Locale           string    `json:"locale"`
	PlayerRoster     string    `json:"player_roster,omitempty"`
	OpponentRoster   string    `json:"opponent_roster,omitempty"`
	PlayerStrategy   string    `json:"player_strategy,omitempty"`
	OpponentStrategy string    `json:"opponent_strategy,omitempty"`
	Winner           string    `json:"winner"`
	Turns            int       `json:"turns"`
	Log              []string  `json:"log,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitzero"`
}

// BattleList is the JSON shape of one page of battles.
type BattleList struct {
	Battles       []Battle `json:"battles"`
	NextPageToken string   `json:"next_page_token,omitempty"`
}

// SimulateRequest is the POST /battles body.
type SimulateRequest struct {
	Seed             int64  `json:"seed"`
	PlayerRoster     string `json:"player_roster"`
	OpponentRoster   string `json:"opponent_roster"`
	PlayerStrategy   string `json:"player_strategy"`
	OpponentStrategy string `json:"opponent_strategy"`
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Service *app.Service
	// Content resolves rosters for POST /battles. Nil disables simulation.
	Content *content.Provider
	// Catalog negotiates request locales. Nil uses the default bundle.
	Catalog *catalog.Bundle
	// Delay is the default pause between replayed lines.
	Delay time.Duration
}

// Handler serves stored battles over HTTP and replays them over WebSocket.
type Handler struct {
	service  *app.Service
	content  *content.Provider
	catalog  *catalog.Bundle
	delay    time.Duration
	tracer   trace.Tracer
	upgrader websocket.Upgrader
	router   *mux.Router
}

// NewHandler builds the replay router.
func NewHandler(cfg HandlerConfig) *Handler {
	bundle := cfg.Catalog
	if bundle == nil {
		bundle = catalog.Default()
	}
	h := &Handler{
		service: cfg.Service,
		content: cfg.Content,
		catalog: bundle,
		delay:   clampDelay(cfg.Delay),
		tracer:  platformotel.Tracer("replay"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := mux.NewRouter()
	r.Use(h.withLocale, h.withSpan)
	r.HandleFunc("/rosters", h.listRosters).Methods(http.MethodGet)
	r.HandleFunc("/battles", h.listBattles).Methods(http.MethodGet)
	r.HandleFunc("/battles", h.simulate).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}", h.getBattle).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}/replay", h.replay).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, apperrors.WithMetadata(apperrors.CodeNotFound, "route not found",
			map[string]string{"resource": "Route"}))
	})
	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// withLocale resolves ?locale= or Accept-Language onto the request context.
func (h *Handler) withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := h.negotiateLocale(r)
		next.ServeHTTP(w, r.WithContext(requestctx.WithLocale(r.Context(), locale)))
	})
}

func (h *Handler) negotiateLocale(r *http.Request) string {
	if requested := strings.TrimSpace(r.URL.Query().Get("locale")); requested != "" {
		return h.catalog.ResolveLocale(requested)
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return catalog.BaseLocale
	}
	return h.catalog.ResolveLocale(tags[0].String())
}

func (h *Handler) withSpan(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		ctx, span := h.tracer.Start(r.Context(), r.Method+" "+route, trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
		))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) listRosters(w http.ResponseWriter, r *http.Request) {
	if h.content == nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeInternal, "content is not configured"))
		return
	}
	names, err := h.content.Rosters()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"rosters": names})
}

func (h *Handler) listBattles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := storage.ListOptions{
		PageToken: query.Get("page_token"),
		Filter:    query.Get("filter"),
		OrderBy:   query.Get("order_by"),
	}
	if raw := query.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			h.writeError(w, r, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "invalid page_size",
				map[string]string{"reason": "page_size must be a non-negative integer"}))
			return
		}
		opts.PageSize = size
	}
	page, err := h.service.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := BattleList{Battles: make([]Battle, 0, len(page.Battles)), NextPageToken: page.NextPageToken}
	for _, record := range page.Battles {
		summary := battleFromRecord(record)
		summary.Log = nil
		out.Battles = append(out.Battles, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getBattle(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, battleFromRecord(record))
}

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	if h.content == nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeInternal, "content is not configured"))
		return
	}
	var req SimulateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, r, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "decode request: "+err.Error(),
			map[string]string{"reason": "request body must be a JSON battle request"}))
		return
	}
	player, opponent, err := app.LoadRosters(h.content, req.PlayerRoster, req.OpponentRoster)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.service.Run(r.Context(), app.Request{
		Seed:             req.Seed,
		Locale:           requestctx.LocaleFromContext(r.Context()),
		Player:           player,
		Opponent:         opponent,
		PlayerStrategy:   req.PlayerStrategy,
		OpponentStrategy: req.OpponentStrategy,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Battle{
		ID:             result.ID,
		Seed:           result.Seed,
		Locale:         result.Locale,
		PlayerRoster:   player.Name,
		OpponentRoster: opponent.Name,
		Winner:         result.Winner.String(),
		Turns:          result.Turns,
		Log:            result.Log,
	})
}

// replay streams a stored log one line per frame, then an end frame.
func (h *Handler) replay(w http.ResponseWriter, r *http.Request) {
	delay := h.delay
	if raw := r.URL.Query().Get("delay_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "invalid delay_ms",
				map[string]string{"reason": "delay_ms must be an integer"}))
			return
		}
		delay = clampDelay(time.Duration(ms) * time.Millisecond)
	}
	record, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Printf("replay upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		// Viewers never send data; a read error means they left.
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	err = Pacer{Delay: delay}.Play(ctx, record.Log, func(i int, line string) error {
		return writeFrame(conn, Frame{Type: FrameLine, Index: i, Line: line})
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("replay %s: %v", record.ID, err)
		}
		return
	}
	if err := writeFrame(conn, Frame{Type: FrameEnd, Index: len(record.Log), Winner: record.Winner, Turns: record.Turns}); err != nil {
		log.Printf("replay %s: %v", record.ID, err)
		return
	}
	deadline := time.Now().Add(timeouts.WebSocketWrite)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay complete"), deadline)
}

func writeFrame(conn *websocket.Conn, frame Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeouts.WebSocketWrite)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := apperrors.ToPayload(err, requestctx.LocaleFromContext(r.Context()))
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func battleFromRecord(record storage.BattleRecord) Battle {
	return Battle{
		ID:               record.ID,
		Seed:             record.Seed,
		Locale:           record.Locale,
		PlayerRoster:     record.PlayerRoster,
		OpponentRoster:   record.OpponentRoster,
		PlayerStrategy:   record.PlayerStrategy,
		OpponentStrategy: record.OpponentStrategy,
		Winner:           record.Winner,
		Turns:            record.Turns,
		Log:              record.Log,
		CreatedAt:        record.CreatedAt,
	}
}
