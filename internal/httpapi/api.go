package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"bookstore.org/internal/audit"
	"bookstore.org/internal/auth"
	"bookstore.org/internal/catalog"
	"bookstore.org/internal/obs"
)

const serviceName = "bookstore-api"

// Pinger is what the readiness probe needs from the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyProbe checks the backing store before declaring readiness.
type ReadyProbe struct {
	Store Pinger
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.Store == nil {
		return nil
	}
	return rp.Store.Ping(ctx)
}

// API is the HTTP layer. All state lives in the injected services; the
// API itself holds nothing mutable across requests.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	catalog    *catalog.Service
	readyProbe ReadyProbe
	version    string

	rateBurst  int
	ratePerSec int
}

// New wires routes to handlers.
func New(rp ReadyProbe, version string, authSvc *auth.Service, catalogSvc *catalog.Service) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       authSvc,
		catalog:    catalogSvc,
		readyProbe: rp,
		version:    version,
		rateBurst:  20,
		ratePerSec: 10,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/books/list", a.handleBookList)
	a.mux.HandleFunc("/books/add", a.handleBookAdd)
	a.mux.HandleFunc("/books/update/", a.handleBookUpdate)
	a.mux.HandleFunc("/books/delete/", a.handleBookDelete)
	a.mux.HandleFunc("/books/", a.handleBookResource)

	a.mux.HandleFunc("/users/list", a.handleUserList)
	a.mux.HandleFunc("/users/add", a.handleUserAdd)
	a.mux.HandleFunc("/users/login", a.handleUserLogin)
	a.mux.HandleFunc("/users/update/", a.handleUserUpdate)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- shared helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// writeMessage emits the business-level envelope used by mutation routes.
func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// logInternalError keeps failure detail on the server side; clients only
// ever see a generic 500 body.
func logInternalError(r *http.Request, err error) {
	obs.Log("error", "request failed", map[string]any{
		"request_id": audit.RequestIDFromContext(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"detail":     err.Error(),
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// --- service handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		obs.Log("error", "readiness check failed", map[string]any{"detail": err.Error()})
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
