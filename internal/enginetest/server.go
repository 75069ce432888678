// Package enginetest runs an in-process stand-in for the DMR engine admin
// API so client code can be tested without a radio attached.
package enginetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/dmrpanel/dmrctl/internal/api/models"
	"github.com/gorilla/mux"
	"gopkg.in/ini.v1"
)

const (
	ResultOK    = "ok"
	ResultReset = "config reset to defaults"
)

type override struct {
	code int
	body string
}

type statusBody struct {
	models.EngineConfig
	Services map[string]interface{} `json:"services"`
}

type hold struct {
	ch   chan struct{}
	once sync.Once
}

func (h *hold) release() {
	h.once.Do(func() { close(h.ch) })
}

// Engine is a fake engine. The zero state reports dmr "stopped" and answers
// every mutating call with result "ok".
type Engine struct {
	mu            sync.Mutex
	config        models.EngineConfig
	dmr           interface{}
	restartResult interface{}
	overrides     map[string]override
	holds         map[string]*hold
	hits          map[string]int
	bodies        map[string][]byte

	server *httptest.Server
}

// NewServer starts a fake engine and closes it when the test ends.
func NewServer(t testing.TB) *Engine {
	t.Helper()
	e := New()
	e.server = httptest.NewServer(e.Router())
	t.Cleanup(func() {
		e.releaseAll()
		e.server.Close()
	})
	return e
}

// New returns an Engine without a listener, for use with Router().
func New() *Engine {
	return &Engine{
		config:        models.DefaultEngineConfig(),
		dmr:           "stopped",
		restartResult: ResultOK,
		overrides:     make(map[string]override),
		holds:         make(map[string]*hold),
		hits:          make(map[string]int),
		bodies:        make(map[string][]byte),
	}
}

func (e *Engine) URL() string {
	return e.server.URL
}

func (e *Engine) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/status", e.wrap(e.status)).Methods(http.MethodGet)
	router.HandleFunc("/api/restart", e.wrap(e.restart)).Methods(http.MethodPost)
	router.HandleFunc("/api/config", e.wrap(e.updateConfig)).Methods(http.MethodPost)
	router.HandleFunc("/api/reset", e.wrap(e.reset)).Methods(http.MethodPost)
	router.HandleFunc("/api/backup", e.wrap(e.backup)).Methods(http.MethodGet)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("405 method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("404 page not found", "path", r.URL.Path)
		http.Error(w, "404 page not found: "+r.URL.Path, http.StatusNotFound)
	})

	return router
}

// SetDMR sets the value reported as services.dmr.
func (e *Engine) SetDMR(v interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dmr = v
}

// SetRestartResult sets the result field returned by /api/restart.
func (e *Engine) SetRestartResult(v interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restartResult = v
}

func (e *Engine) SetConfig(cfg models.EngineConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = cfg
}

func (e *Engine) Config() models.EngineConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Override makes path answer with code and a raw body instead of its
// normal response.
func (e *Engine) Override(path string, code int, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overrides[path] = override{code: code, body: body}
}

// Hold blocks requests to path until the returned function is called.
func (e *Engine) Hold(path string) (release func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := &hold{ch: make(chan struct{})}
	e.holds[path] = h
	return h.release
}

// Hits returns how many requests reached path.
func (e *Engine) Hits(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits[path]
}

// LastBody returns the body of the most recent request to path.
func (e *Engine) LastBody(path string) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bodies[path]
}

func (e *Engine) releaseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.holds {
		h.release()
	}
}

func (e *Engine) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		body, _ := io.ReadAll(r.Body)

		e.mu.Lock()
		e.hits[path]++
		e.bodies[path] = body
		h, held := e.holds[path]
		ov, overridden := e.overrides[path]
		e.mu.Unlock()

		if held {
			select {
			case <-h.ch:
			case <-r.Context().Done():
				return
			}
		}

		if overridden {
			w.WriteHeader(ov.code)
			fmt.Fprint(w, ov.body)
			return
		}
		next(w, r)
	}
}

func (e *Engine) status(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	resp := statusBody{
		EngineConfig: e.config,
		Services:     map[string]interface{}{"dmr": e.dmr},
	}
	e.mu.Unlock()
	writeJSON(w, resp)
}

func (e *Engine) restart(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	result := e.restartResult
	e.mu.Unlock()
	writeJSON(w, models.Ret{Result: result})
}

func (e *Engine) updateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.EngineConfig
	if err := json.Unmarshal(e.LastBody(r.URL.Path), &cfg); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	e.SetConfig(cfg)
	writeJSON(w, models.Ret{Result: ResultOK})
}

func (e *Engine) reset(w http.ResponseWriter, r *http.Request) {
	e.SetConfig(models.DefaultEngineConfig())
	writeJSON(w, models.Ret{Result: ResultReset})
}

func (e *Engine) backup(w http.ResponseWriter, r *http.Request) {
	cfg := e.Config()

	file := ini.Empty()
	section := file.Section("dmr")
	section.Key("callsign").SetValue(cfg.Callsign)
	section.Key("dmr_id").SetValue(fmt.Sprintf("%d", cfg.DMRID))
	section.Key("frequency").SetValue(fmt.Sprintf("%.3f", cfg.Frequency))
	section.Key("timeslot").SetValue(fmt.Sprintf("%d", cfg.Timeslot))
	section.Key("color_code").SetValue(fmt.Sprintf("%d", cfg.ColorCode))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := file.WriteTo(w); err != nil {
		log.Error("failed to write backup", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to send response", "error", err)
	}
}
