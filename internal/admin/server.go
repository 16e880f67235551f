package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mimac-sim/internal/config"
	"mimac-sim/internal/logging"
	"mimac-sim/internal/sim"
)

// Runner is the part of the simulator the admin UI drives.
type Runner interface {
	RunAll(ctx context.Context) (sim.Batch, error)
	RunWithSeed(ctx context.Context, seed int64) (sim.Batch, error)
	Latest() sim.Batch
	GetConfig() *config.SimulationConfig
}

type Server struct {
	Sim      Runner
	tpl      *template.Template
	gatherer prometheus.Gatherer
	mux      *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer builds the admin UI. A nil gatherer serves the default registry.
func NewServer(r Runner, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	tpl := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"mJ": func(j float64) string { return strconv.FormatFloat(j*1e3, 'f', 4, 64) },
	}).ParseFS(content, "templates/index.html"))
	s := &Server{Sim: r, tpl: tpl, gatherer: gatherer, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/results", s.handleResults)
	s.mux.HandleFunc("/rerun", s.handleRerun)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on addr until ctx is cancelled. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.FromContext(ctx).Warn("admin shutdown", "err", err)
		}
	}()
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		Config *config.SimulationConfig
		Batch  sim.Batch
	}{
		Config: s.Sim.GetConfig(),
		Batch:  s.Sim.Latest(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Latest())
}

func (s *Server) handleRerun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var (
		batch sim.Batch
		err   error
	)
	if v := r.FormValue("seed"); v != "" {
		seed, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		batch, err = s.Sim.RunWithSeed(r.Context(), seed)
	} else {
		batch, err = s.Sim.RunAll(r.Context())
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("rerun failed", "err", err)
		if len(batch.Summaries) == 0 {
			status := http.StatusInternalServerError
			if errors.Is(err, context.Canceled) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, err.Error(), status)
			return
		}
	}
	// the index page form posts urlencoded and expects to land back on /
	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
