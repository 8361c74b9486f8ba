package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-kvcache/cache"
)

type handler struct {
	engine *cache.Engine
	logger *log.Logger
}

// NewHTTPRouter exposes engine as a small JSON admin API:
//
//	GET    /keys
//	GET    /stats
//	POST   /cleanup
//	GET    /entries/{key}
//	PUT    /entries/{key}?ttl=1h
//	DELETE /entries/{key}
//	DELETE /entries
func NewHTTPRouter(engine *cache.Engine, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default().WithPrefix("http")
	}
	h := &handler{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/keys", h.keys)
	r.Get("/stats", h.stats)
	r.Post("/cleanup", h.cleanup)

	r.Route("/entries", func(r chi.Router) {
		r.Delete("/", h.clear)
		r.Get("/{key}", h.get)
		r.Put("/{key}", h.set)
		r.Delete("/{key}", h.remove)
	})
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "took", time.Since(start))
	})
}

func (h *handler) keys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"keys": h.engine.Keys()})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Stats())
}

func (h *handler) cleanup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"removed": h.engine.Cleanup()})
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var value any
	if !h.engine.Get(key, &value) {
		h.fail(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": value})
}

func (h *handler) set(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	ttl, err := cache.ParseTTL(r.URL.Query().Get("ttl"))
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		h.fail(w, http.StatusBadRequest, "body must be a JSON value: "+err.Error())
		return
	}

	if !h.engine.Set(key, value, ttl) {
		h.storeError(w, "set", key)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !h.engine.Remove(key) {
		h.storeError(w, "remove", key)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) clear(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Clear() {
		h.storeError(w, "clear", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) storeError(w http.ResponseWriter, op, key string) {
	err := h.engine.LastError()
	status := http.StatusInternalServerError
	if errors.Is(err, cache.ErrStoreUnavailable) {
		status = http.StatusServiceUnavailable
	}

	msg := op + " failed"
	if err != nil {
		msg = err.Error()
	}
	h.logger.Warn("request failed", "op", op, "key", key, "err", err)
	h.fail(w, status, msg)
}

func (h *handler) fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
