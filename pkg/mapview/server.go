package mapview

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tstromberg/photomap/pkg/photomap"
	"k8s.io/klog/v2"
)

// Server serves the rendered map and a read-only API over a dataset.
type Server struct {
	c       *Config
	ds      *photomap.Dataset
	points  []Point
	regions []Region
}

// New creates a new server.
func New(c *Config, ds *photomap.Dataset) *Server {
	return &Server{
		c:       c,
		ds:      ds,
		points:  Points(ds),
		regions: regions(c, ds),
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/points", s.PointsHandler())
		r.Get("/regions", s.RegionsHandler())
		r.Get("/regions/{name}", s.RegionHandler())
		r.Get("/photo", s.PhotoHandler())
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", http.FileServer(http.Dir(s.c.OutDir)))

	return r
}

// Serve listens on the configured address until the server fails.
func (s *Server) Serve() error {
	srv := &http.Server{
		Addr:              s.c.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	klog.Infof("Listening on %s...", s.c.Addr)
	return srv.ListenAndServe()
}

// PointsHandler lists every plotted point.
func (s *Server) PointsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.points)
	}
}

// RegionsHandler lists the regions offered in the dropdown.
func (s *Server) RegionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.regions)
	}
}

// RegionHandler returns the view for a single region.
func (s *Server) RegionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		for _, rg := range s.regions {
			if rg.Name == name {
				writeJSON(w, http.StatusOK, rg)
				return
			}
		}
		writeError(w, http.StatusNotFound, "unknown region "+strconv.Quote(name))
	}
}

// PhotoHandler finds the photo for a clicked point, identified by its
// capture time and position.
func (s *Server) PhotoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		t, err := time.Parse(photomap.CacheTimeLayout, q.Get("datetime"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid datetime")
			return
		}
		lat, err := strconv.ParseFloat(q.Get("lat"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lat")
			return
		}
		lon, err := strconv.ParseFloat(q.Get("lon"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lon")
			return
		}

		rec, ok := s.ds.Match(t, lat, lon)
		if !ok {
			writeError(w, http.StatusNotFound, "no photo at that point")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"filename": rec.Filename,
			"url":      photoURL(rec.Filename),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Errorf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		klog.V(1).Infof("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
