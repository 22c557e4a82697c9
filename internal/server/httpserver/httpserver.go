// Package httpserver serves the short-link and paste protocols locally so
// the clients and the CLI can run without the hosted services.
package httpserver

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	rate "github.com/wallstreetcn/rate/redis"

	"github.com/icakad/icakad-go/internal/config"
	"github.com/icakad/icakad-go/internal/paste"
	"github.com/icakad/icakad-go/internal/store"
	"github.com/icakad/icakad-go/internal/util/randutil"
)

// maxDrain bounds how much of an oversize create body is read and discarded.
const maxDrain = config.MaxPayloadSize

// Options configures the handler.
type Options struct {
	// PublicURL prefixes paste URLs. Defaults to http://<request host>.
	PublicURL string
	// Token, when set, is required as a bearer token on link writes and deletes.
	Token string
	// PasteTTL applies when a create request names no lifetime.
	PasteTTL time.Duration
	// Allow decides whether a client IP may create a paste now. Nil allows all.
	Allow func(ip string) bool
	// TrustProxy reads the client IP from X-Forwarded-For and X-Real-IP.
	TrustProxy bool
	Logger     zerolog.Logger
}

// RedisLimiter allows one paste per interval per IP, tracked in the Redis
// instance configured with rate.SetRedis.
func RedisLimiter(every time.Duration) func(ip string) bool {
	return func(ip string) bool {
		return rate.NewLimiter(rate.Every(every), 1, "icakad_http_create_rl_"+ip).Allow()
	}
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store store.Store
	opts  Options
	log   zerolog.Logger
}

// NewHandler creates an HTTP handler with all routes configured. Short-link
// routes live under config.LinksPrefix, everything else is the paste service.
func NewHandler(s store.Store, opts Options) http.Handler {
	if opts.PasteTTL <= 0 {
		opts.PasteTTL = config.PasteTTL
	}
	srv := &Server{store: s, opts: opts, log: opts.Logger}

	links := httprouter.New()
	links.GET("/", srv.listLinks)
	links.POST("/", srv.writeLink)
	links.POST("/:slug", srv.writeLink)
	links.DELETE("/:slug", srv.deleteLink)

	pastes := httprouter.New()
	pastes.GET("/", srv.listPastes)
	pastes.GET("/:id", srv.getPaste)
	pastes.DELETE("/:id", srv.deletePaste)
	pastes.POST("/api/paste", srv.createPaste)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rest, ok := underPrefix(r.URL.Path, config.LinksPrefix); ok {
			r2 := new(http.Request)
			*r2 = *r
			u := *r.URL
			u.Path, u.RawPath = rest, ""
			r2.URL = &u
			links.ServeHTTP(w, r2)
			return
		}
		pastes.ServeHTTP(w, r)
	})
}

func underPrefix(path, prefix string) (string, bool) {
	if path == prefix {
		return "/", true
	}
	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):], true
	}
	return "", false
}

type linkItem struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

func (s *Server) listLinks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	links, err := s.store.Links()
	if err != nil {
		s.internalError(w, "store links failed", err)
		return
	}

	items := make([]linkItem, 0, len(links))
	for slug, target := range links {
		items = append(items, linkItem{Slug: slug, URL: target})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Slug < items[j].Slug })
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// writeLink serves both create (POST /) and edit (POST /:slug). The path
// slug wins over the one in the body.
func (s *Server) writeLink(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	defer r.Body.Close()
	if !s.authorized(w, r) {
		return
	}

	var in linkItem
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if slug := ps.ByName("slug"); slug != "" {
		in.Slug = slug
	}
	if in.Slug == "" || in.URL == "" {
		writeError(w, http.StatusBadRequest, "slug and url are required")
		return
	}

	if err := s.store.PutLink(in.Slug, in.URL); err != nil {
		s.internalError(w, "store put link failed", err)
		return
	}
	s.log.Info().Str("slug", in.Slug).Str("remote", s.clientIP(r)).Msg("stored link")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "slug": in.Slug, "url": in.URL})
}

func (s *Server) deleteLink(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !s.authorized(w, r) {
		return
	}
	slug := ps.ByName("slug")

	ok, err := s.store.DeleteLink(slug)
	if err != nil {
		s.internalError(w, "store delete link failed", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "slug not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type pasteItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Syntax    string    `json:"syntax,omitempty"`
	Protected bool      `json:"protected,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) listPastes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pastes, err := s.store.ListPastes()
	if err != nil {
		s.internalError(w, "store list pastes failed", err)
		return
	}

	items := make([]pasteItem, 0, len(pastes))
	for _, p := range pastes {
		items = append(items, pasteItem{
			ID:        p.ID,
			URL:       s.pasteURL(r, p.ID),
			Title:     p.Title,
			Syntax:    p.Syntax,
			Protected: p.Password != "",
			CreatedAt: p.CreatedAt,
			ExpiresAt: p.ExpiresAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"pastes": items})
}

func (s *Server) getPaste(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	p, err := s.store.GetPaste(id)
	if err != nil {
		if err != store.ErrNotFound {
			s.log.Error().Err(err).Str("identifier", id).Msg("store get failed")
		}
		writeText(w, http.StatusNotFound, "not found or expired")
		return
	}
	if p.Password != "" && r.URL.Query().Get("password") != p.Password {
		writeText(w, http.StatusForbidden, "password required")
		return
	}
	writeText(w, http.StatusOK, p.Content)
}

func (s *Server) deletePaste(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !s.authorized(w, r) {
		return
	}
	id := ps.ByName("id")

	ok, err := s.store.DeletePaste(id)
	if err != nil {
		s.internalError(w, "store delete paste failed", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "paste not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) createPaste(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer r.Body.Close()

	cip := s.clientIP(r)
	if s.opts.Allow != nil && !s.opts.Allow(cip) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	// Read one byte past the limit so oversize bodies are detected.
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(config.MaxPayloadSize)+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading body")
		return
	}
	if len(body) > config.MaxPayloadSize {
		// Drain a bounded amount so most clients see the response instead
		// of a reset; anything larger gets the connection closed.
		_, _ = io.CopyN(io.Discard, r.Body, maxDrain)
	}

	sub, err := paste.Decode(r.Header.Get("Content-Type"), body, r.URL.Query())
	if err != nil {
		if ve, ok := err.(*paste.ValidationError); ok {
			writeError(w, ve.StatusCode, ve.Message)
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	ttl := sub.TTL
	if ttl <= 0 {
		ttl = s.opts.PasteTTL
	}
	p := store.Paste{
		ID:        sub.ID,
		Content:   sub.Content,
		Title:     sub.Title,
		Syntax:    sub.Syntax,
		Password:  sub.Password,
		CreatedAt: time.Now().UTC(),
	}

	if p.ID != "" {
		ok, err := s.store.CreatePaste(p, ttl)
		if err != nil {
			s.internalError(w, "store create failed", err)
			return
		}
		if !ok {
			writeError(w, http.StatusConflict, "id already exists")
			return
		}
		s.created(w, r, p.ID, cip)
		return
	}

	// Generate unique identifier and store atomically
	for tried := 0; tried < 10; tried++ {
		if p.ID, err = randutil.ID(config.IDLength); err != nil {
			s.internalError(w, "id generation failed", err)
			return
		}
		ok, err := s.store.CreatePaste(p, ttl)
		if err != nil {
			s.internalError(w, "store create failed", err)
			return
		}
		if ok {
			s.created(w, r, p.ID, cip)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "could not generate identifier")
}

func (s *Server) created(w http.ResponseWriter, r *http.Request, id, remote string) {
	s.log.Info().Str("identifier", id).Str("remote", remote).Msg("created paste")
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id, "url": s.pasteURL(r, id)})
}

func (s *Server) pasteURL(r *http.Request, id string) string {
	base := strings.TrimRight(s.opts.PublicURL, "/")
	if base == "" {
		base = "http://" + r.Host
	}
	return base + "/" + id
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.opts.Token == "" || r.Header.Get("Authorization") == "Bearer "+s.opts.Token {
		return true
	}
	writeError(w, http.StatusUnauthorized, "unauthorized")
	return false
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// clientIP extracts the client IP. Forwarding headers are only trusted when
// the server sits behind a proxy.
func (s *Server) clientIP(r *http.Request) string {
	if s.opts.TrustProxy {
		// First entry is the original client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
