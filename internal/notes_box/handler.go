package notes_box

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/notesservice/internal/telemetry/metrics"
	"github.com/2beens/notesservice/internal/telemetry/tracing"
	"github.com/2beens/notesservice/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	errMsgContentMissing = "content missing"
	errMsgMalformedBody  = "malformed request body"
	errMsgBodyTooLarge   = "request entity too large"
)

type Handler struct {
	store   *Store
	metrics *metrics.Manager
	now     func() time.Time
}

func NewHandler(store *Store, metrics *metrics.Manager) *Handler {
	return &Handler{
		store:   store,
		metrics: metrics,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

// SetupRoutes registers the notes API. createMiddleware is applied only to the
// note creation route (e.g. rate limiting).
func (handler *Handler) SetupRoutes(router *mux.Router, createMiddleware ...mux.MiddlewareFunc) {
	var addHandler http.Handler = http.HandlerFunc(handler.HandleAdd)
	for i := len(createMiddleware) - 1; i >= 0; i-- {
		addHandler = createMiddleware[i](addHandler)
	}

	router.HandleFunc("/api/notes", handler.HandleList).Methods("GET").Name("list-notes")
	router.Handle("/api/notes", addHandler).Methods("POST").Name("new-note")
	router.HandleFunc("/api/notes/{id}", handler.HandleGet).Methods("GET").Name("get-note")
	router.HandleFunc("/api/notes/{id}", handler.HandleDelete).Methods("DELETE").Name("delete-note")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.list")
	defer span.End()

	notes := handler.store.List(ctx)
	pkg.WriteJSON(w, notes, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.get")
	defer span.End()

	id, ok := parseNoteID(mux.Vars(r)["id"])
	if !ok {
		log.Tracef("get note: invalid id [%s]", mux.Vars(r)["id"])
		span.SetStatus(codes.Error, "invalid-id")
		pkg.WriteEmpty(w, http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.Int("note.id", id))

	note, err := handler.store.Get(ctx, id)
	if errors.Is(err, ErrNoteNotFound) {
		pkg.WriteEmpty(w, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get note %d: %s", id, err)
		span.RecordError(err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, note, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.delete")
	defer span.End()

	// an unparsable id can not match any note, so there is nothing to remove
	if id, ok := parseNoteID(mux.Vars(r)["id"]); ok {
		span.SetAttributes(attribute.Int("note.id", id))
		if handler.store.Delete(ctx, id) {
			log.Debugf("note deleted: %d", id)
			handler.metrics.CounterNotesDeleted.Inc()
			handler.metrics.GaugeNotes.Set(float64(handler.store.Len(ctx)))
		}
	}

	pkg.WriteEmpty(w, http.StatusNoContent)
}

type newNoteRequest struct {
	Content   string `json:"content"`
	Important *bool  `json:"important"`
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.add")
	defer span.End()

	noteReq, err := decodeNewNoteRequest(r)
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		span.SetStatus(codes.Error, "body-too-large")
		pkg.WriteJSONError(w, errMsgBodyTooLarge, http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		log.Debugf("add new note, decode request body: %s", err)
		span.SetStatus(codes.Error, "malformed-body")
		pkg.WriteJSONError(w, errMsgMalformedBody, http.StatusBadRequest)
		return
	}

	important := noteReq.Important != nil && *noteReq.Important
	note, err := handler.store.Add(ctx, noteReq.Content, important, handler.now())
	if errors.Is(err, ErrContentMissing) {
		span.SetStatus(codes.Error, "content-missing")
		pkg.WriteJSONError(w, errMsgContentMissing, http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("failed to add new note: %s", err)
		span.RecordError(err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNotes.Inc()
	handler.metrics.GaugeNotes.Set(float64(handler.store.Len(ctx)))

	log.Debugf("new note added: [%d] important: %t", note.ID, note.Important)
	pkg.WriteJSON(w, note, http.StatusOK)
}

// decodeNewNoteRequest reads the JSON body. Requests not declared as JSON are
// treated as an empty object, the same way an absent body is.
func decodeNewNoteRequest(r *http.Request) (newNoteRequest, error) {
	var noteReq newNoteRequest
	if r.Body == nil {
		return noteReq, nil
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return noteReq, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&noteReq); err != nil && !errors.Is(err, io.EOF) {
		return newNoteRequest{}, err
	}
	return noteReq, nil
}

// parseNoteID accepts plain integers and integral numbers like "2.0".
func parseNoteID(idStr string) (int, bool) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return 0, false
	}
	if id, err := strconv.Atoi(idStr); err == nil {
		return id, true
	}

	f, err := strconv.ParseFloat(idStr, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// same range Atoi accepts
	if f < math.MinInt || f >= -float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}
