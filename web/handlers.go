package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/esimov/emojimaker"
)

//go:embed templates/*.html
var templates embed.FS

const (
	layerCacheControl = "public, max-age=3600"
	// maxThumbSize bounds the size query parameter of the layer previews.
	maxThumbSize = 1024
)

// Server serves the emoji maker page and the rendered composites.
type Server struct {
	Gallery    *emojimaker.Gallery
	Compositor *emojimaker.Compositor
	Tmpl       *template.Template
	// Logger receives the request log. A nil Logger disables it.
	Logger *log.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewServer returns a server rendering the gallery with the compositor.
// The shuffled selections are generated from seed.
func NewServer(g *emojimaker.Gallery, c *emojimaker.Compositor, seed int64) (*Server, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		Gallery:    g,
		Compositor: c,
		Tmpl:       tmpl,
		rnd:        rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)

	for _, f := range []emojimaker.Format{emojimaker.PNG, emojimaker.JPEG, emojimaker.BMP, emojimaker.PDF} {
		mux.HandleFunc("/composite."+string(f), s.handleComposite(f))
	}
	mux.HandleFunc("/composite.jpg", s.handleComposite(emojimaker.JPEG))
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/shuffle", s.handleShuffle)
	mux.HandleFunc("/layers/", s.handleLayer)
	mux.HandleFunc("/healthz", s.handleHealth)

	return s.logRequests(allowGet(mux))
}

// selection returns the normalized selection of the request query.
func (s *Server) selection(r *http.Request) emojimaker.Selection {
	return emojimaker.FromValues(r.URL.Query()).Normalize(s.Gallery)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	vm, err := s.makeViewModel(s.selection(r), baseURL(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.Tmpl.ExecuteTemplate(&buf, "index.html", vm); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleComposite(f emojimaker.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := s.Compositor.Process(r.Context(), s.selection(r), s.Gallery, &buf, f); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if r.URL.Query().Has("download") {
			w.Header().Set("Content-Disposition", `attachment; filename="emoji.`+string(f)+`"`)
		}
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	uri, err := s.Compositor.Export(r.Context(), s.selection(r), s.Gallery)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, uri)
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sel := s.Gallery.Shuffle(s.rnd)
	s.mu.Unlock()

	http.Redirect(w, r, "/?"+sel.Encode(), http.StatusFound)
}

// handleLayer serves /layers/{category}/{index}, optionally scaled down
// to the size query parameter.
func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/layers/"), "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	cat, err := emojimaker.ParseCategory(parts[0])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	layer, ok := s.Gallery.Layer(cat, idx)
	if !ok {
		http.NotFound(w, r)
		return
	}

	img, err := s.Compositor.Layer(r.Context(), layer, s.Gallery)
	if err != nil {
		http.Error(w, "the layer could not be loaded", http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && size > 0 {
		if size > maxThumbSize {
			size = maxThumbSize
		}
		err = emojimaker.Encode(&buf, imaging.Fit(img, size, size, imaging.Lanczos), emojimaker.PNG)
	} else {
		err = emojimaker.Encode(&buf, img, emojimaker.PNG)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", emojimaker.PNG.ContentType())
	w.Header().Set("Cache-Control", layerCacheControl)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// allowGet rejects every method except GET and HEAD.
func allowGet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder keeps the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	if s.Logger == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Logger.Printf("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Microsecond))
	})
}

// baseURL returns the scheme and host the request has been sent to.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + "/"
}
