package kndweb

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/carousel"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testBlogs = []api.Blog{
	{ID: 1, Title: "Hello World", Summary: "First post", Content: "# Hi", Path: "hello-world",
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
	{ID: 2, Title: "Precision Parts", Summary: "Machining update", Content: "body",
		CreatedAt: time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 4, 5, 10, 0, 0, 0, time.UTC)},
}

var testSolutions = []api.Solution{
	{ID: 7, Title: "AR Housing", Description: "Aluminium housings", Path: "ar-housing"},
}

// fakeBackend is a minimal stand-in for the REST backend. It registers the
// same routes as the real one: public reads under /api/<name> and, on the
// admin side, writes plus the contacts list only.
type fakeBackend struct {
	mu       sync.Mutex
	contacts []api.ContactRequest
	blogHits int
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

// serveByRef answers /by-path/<path> and /<id> lookups under prefix.
func serveByRef[T any](w http.ResponseWriter, p, prefix string, items []T, pathOf func(T) string, idOf func(T) int) {
	rest := strings.TrimPrefix(p, prefix)
	byPath := strings.HasPrefix(rest, "by-path/")
	ref := strings.TrimPrefix(rest, "by-path/")
	for _, it := range items {
		if (byPath && pathOf(it) != "" && pathOf(it) == ref) ||
			(!byPath && api.ContentRef("", idOf(it)) == ref) {
			writeJSON(w, http.StatusOK, it)
			return
		}
	}
	notFound(w)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if r.Method == http.MethodGet {
		switch {
		case p == "/api/blogs":
			f.mu.Lock()
			f.blogHits++
			f.mu.Unlock()
			writeJSON(w, http.StatusOK, testBlogs)
		case strings.HasPrefix(p, "/api/blogs/"):
			serveByRef(w, p, "/api/blogs/", testBlogs,
				func(b api.Blog) string { return b.Path }, func(b api.Blog) int { return b.ID })
		case p == "/api/solutions":
			writeJSON(w, http.StatusOK, testSolutions)
		case strings.HasPrefix(p, "/api/solutions/"):
			serveByRef(w, p, "/api/solutions/", testSolutions,
				func(s api.Solution) string { return s.Path }, func(s api.Solution) int { return s.ID })
		case p == "/api/social-links", p == "/api/categories", p == "/api/carousels":
			writeJSON(w, http.StatusOK, []any{})
		case p == "/api/admin/contacts":
			if r.Header.Get("Authorization") != "Bearer tok" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}
			writeJSON(w, http.StatusOK, []any{})
		default:
			notFound(w)
		}
		return
	}

	switch {
	case p == "/api/contact" && r.Method == http.MethodPost:
		var req api.ContactRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.contacts = append(f.contacts, req)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	case p == "/api/admin/login":
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, api.LoginResponse{Token: "tok", Username: in["username"]})
	case strings.HasPrefix(p, "/api/admin/"):
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	default:
		notFound(w)
	}
}

type recordingNotifier struct {
	sent chan api.ContactRequest
}

func (n recordingNotifier) ContactReceived(_ context.Context, c api.ContactRequest) error {
	n.sent <- c
	return nil
}

func newTestApp(t *testing.T, opts ...Option) (*App, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := SiteConfig{
		URL:               "https://example.com",
		Description:       "Precision hardware",
		APIBaseURL:        srv.URL,
		SessionSecret:     testSecret,
		MediaDatabasePath: filepath.Join(t.TempDir(), "media.db"),
	}
	opts = append([]Option{WithStaticDir(t.TempDir())}, opts...)
	a := New(cfg, DefaultViews(), opts...)
	if err := a.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, backend
}

func doRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string) *httptest.ResponseRecorder {
	return doRequest(a, httptest.NewRequest(http.MethodGet, target, nil))
}

// postForm sends a form with a matching CSRF cookie and field.
func postForm(a *App, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	form.Set("_csrf", "csrf-token-value")
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: "csrf-token-value"})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return doRequest(a, req)
}

func TestPublicPages(t *testing.T) {
	a, _ := newTestApp(t)

	tests := []struct {
		target   string
		wantCode int
		want     string
	}{
		{"/", http.StatusOK, `data-fallback="true"`},
		{"/about/", http.StatusOK, "About"},
		{"/news/", http.StatusOK, "Precision Parts"},
		{"/blog/hello-world/", http.StatusOK, "Hello World"},
		{"/blog/2/", http.StatusOK, "Precision Parts"},
		{"/solution/", http.StatusOK, "AR Housing"},
		{"/solution/ar-housing/", http.StatusOK, "Aluminium housings"},
		{"/solution/7/", http.StatusOK, "Aluminium housings"},
		{"/solution/missing/", http.StatusNotFound, "404"},
		{"/contact/", http.StatusOK, `name="_csrf"`},
		{"/blog/missing/", http.StatusNotFound, "404"},
		{"/nope/", http.StatusNotFound, "404"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(a, tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestNewsSearchFilters(t *testing.T) {
	a, _ := newTestApp(t)
	rec := get(a, "/news/?q=precision")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Precision Parts") {
		t.Error("matching post missing")
	}
	if strings.Contains(body, "Hello World") {
		t.Error("non-matching post should be filtered out")
	}
}

func TestLegacyNewsRedirect(t *testing.T) {
	a, _ := newTestApp(t)
	tests := []struct{ target, want string }{
		{"/news/1/", "/blog/hello-world/"},
		{"/news/2/", "/blog/2/"},
	}
	for _, tt := range tests {
		rec := get(a, tt.target)
		if rec.Code != http.StatusMovedPermanently {
			t.Fatalf("%s: status = %d, want 301", tt.target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != tt.want {
			t.Errorf("%s: Location = %q, want %q", tt.target, loc, tt.want)
		}
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	a, _ := newTestApp(t)
	rec := get(a, "/about")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/about/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestRobots(t *testing.T) {
	a, _ := newTestApp(t)
	rec := get(a, "/robots.txt")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Disallow: /admin", "Sitemap: https://example.com/sitemap.xml"} {
		if !strings.Contains(body, want) {
			t.Errorf("robots.txt missing %q", want)
		}
	}
}

func TestSitemap(t *testing.T) {
	a, _ := newTestApp(t)
	rec := get(a, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<loc>https://example.com/about/</loc>",
		"<loc>https://example.com/blog/hello-world/</loc>",
		"<loc>https://example.com/blog/2/</loc>",
		"<lastmod>2024-04-05</lastmod>",
		"<loc>https://example.com/solution/ar-housing/</loc>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
}

func TestFeed(t *testing.T) {
	a, _ := newTestApp(t)
	rec := get(a, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<rss version="2.0">`) {
		t.Error("missing rss root")
	}
	if !strings.Contains(body, "<title>Hello World</title>") {
		t.Error("missing item title")
	}
}

func TestEmbeddedAssets(t *testing.T) {
	a, _ := newTestApp(t)
	for _, name := range []string{"carousel.js", "admin.js", "site.css"} {
		rec := get(a, "/public/"+name)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", name, rec.Code)
		}
	}
}

func TestContactSubmit(t *testing.T) {
	n := recordingNotifier{sent: make(chan api.ContactRequest, 1)}
	a, backend := newTestApp(t, WithNotifier(n))

	rec := postForm(a, "/contact/", url.Values{
		"name":    {"Ada"},
		"email":   {"not-an-email"},
		"subject": {"Hi"},
		"message": {"Hello"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid form status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please enter a valid email") {
		t.Error("missing field error")
	}

	rec = postForm(a, "/contact/", url.Values{
		"name":    {" Ada "},
		"email":   {"ada@example.com"},
		"subject": {"Quote"},
		"message": {"Need 100 parts"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("valid form status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/contact/?sent=1" {
		t.Errorf("Location = %q", loc)
	}

	backend.mu.Lock()
	got := backend.contacts
	backend.mu.Unlock()
	if len(got) != 1 || got[0].Name != "Ada" {
		t.Fatalf("backend contacts = %+v", got)
	}

	select {
	case sent := <-n.sent:
		if sent.Email != "ada@example.com" {
			t.Errorf("notified email = %q", sent.Email)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notifier not called")
	}
}

func TestContactRequiresCSRF(t *testing.T) {
	a, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/contact/", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := doRequest(a, req); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAdminLoginFlow(t *testing.T) {
	a, _ := newTestApp(t)

	rec := get(a, "/admin/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Fatalf("login page: status %d", rec.Code)
	}

	rec = get(a, "/admin/blogs/")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unauthenticated tab status = %d, want 303", rec.Code)
	}

	rec = postForm(a, "/admin/login/", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}

	rec = postForm(a, "/admin/login/", url.Values{"username": {"admin"}, "password": {"secret"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rec.Code)
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/blogs/", nil)
	req.AddCookie(session)
	rec = doRequest(a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="tab active"`) {
		t.Error("dashboard missing active tab")
	}

	tabs := []struct{ tab, want string }{
		{"blogs", "Precision Parts"},
		{"solutions", "AR Housing"},
		{"carousels", ""},
		{"contacts", ""},
		{"social", ""},
		{"media", ""},
		{"account", `name="current_password"`},
		{"database", ""},
	}
	for _, tt := range tabs {
		req := httptest.NewRequest(http.MethodGet, "/admin/"+tt.tab+"/", nil)
		req.AddCookie(session)
		rec := doRequest(a, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s tab status = %d, want 200", tt.tab, rec.Code)
			continue
		}
		if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s tab missing %q", tt.tab, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	valid := SiteConfig{URL: "https://example.com", APIBaseURL: "http://api:8080", SessionSecret: testSecret}
	tests := []struct {
		name    string
		mutate  func(*SiteConfig)
		wantErr bool
	}{
		{"valid", func(*SiteConfig) {}, false},
		{"short secret", func(c *SiteConfig) { c.SessionSecret = "short" }, true},
		{"missing api", func(c *SiteConfig) { c.APIBaseURL = "" }, true},
		{"relative url", func(c *SiteConfig) { c.URL = "/site" }, true},
		{"relative api", func(c *SiteConfig) { c.APIBaseURL = "api:8080" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContentCacheInvalidate(t *testing.T) {
	a, backend := newTestApp(t)
	ctx := context.Background()

	for range 3 {
		if _, err := a.Cache.Blogs(ctx); err != nil {
			t.Fatalf("Blogs: %v", err)
		}
	}
	backend.mu.Lock()
	hits := backend.blogHits
	backend.mu.Unlock()
	if hits != 1 {
		t.Fatalf("backend hits = %d, want 1", hits)
	}

	a.Cache.Invalidate(ctx)
	blogs, err := a.Cache.Blogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	backend.mu.Lock()
	hits = backend.blogHits
	backend.mu.Unlock()
	if hits != 2 {
		t.Errorf("backend hits after invalidate = %d, want 2", hits)
	}
	if len(blogs) != 2 || blogs[0].ID != 2 {
		t.Errorf("blogs not sorted newest first: %+v", blogs)
	}
}

func postAction(a *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.Header.Set("X-CSRF-Token", "csrf-token-value")
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: "csrf-token-value"})
	return doRequest(a, req)
}

func TestCarouselActions(t *testing.T) {
	a, _ := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := a.carouselOptions()
	hero := a.Hub.Spawn(ctx, carousel.PositionTop, carousel.NewDriver(carousel.PositionTop, 3, opts))
	strip := a.Hub.Spawn(ctx, carousel.PositionBottom, carousel.NewDriver(carousel.PositionBottom, 6, opts))

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantIndex int
		wantPause bool
	}{
		{"next", "/carousel/" + hero.ID() + "/next/", http.StatusOK, 1, false},
		{"jump", "/carousel/" + hero.ID() + "/jump/?to=2", http.StatusOK, 2, false},
		{"jump out of range keeps frame", "/carousel/" + hero.ID() + "/jump/?to=9", http.StatusOK, 2, false},
		{"prev", "/carousel/" + hero.ID() + "/prev/", http.StatusOK, 1, false},
		{"pause", "/carousel/" + strip.ID() + "/pause/", http.StatusOK, 0, true},
		{"resume", "/carousel/" + strip.ID() + "/resume/", http.StatusOK, 0, false},
		{"marquee has no steps", "/carousel/" + strip.ID() + "/next/", http.StatusConflict, 0, false},
		{"bad jump", "/carousel/" + hero.ID() + "/jump/?to=x", http.StatusBadRequest, 0, false},
		{"unknown action", "/carousel/" + hero.ID() + "/spin/", http.StatusBadRequest, 0, false},
		{"unknown player", "/carousel/nope/next/", http.StatusNotFound, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAction(a, tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var f carousel.Frame
			if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			if f.Index != tt.wantIndex || f.Paused != tt.wantPause {
				t.Errorf("frame = %+v, want index %d paused %v", f, tt.wantIndex, tt.wantPause)
			}
		})
	}
}

func TestCarouselStreamRejectsPosition(t *testing.T) {
	a, _ := newTestApp(t)
	if rec := get(a, "/carousel/stream/?position=middle"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestShutdownEndsCarouselStreams(t *testing.T) {
	a, _ := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/carousel/stream/?position=top")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q", ct)
	}
	r := bufio.NewReader(resp.Body)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("stream ended before hello: %v", err)
		}
		if strings.TrimSpace(line) == "event: hello" {
			break
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, r)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("stream closed with %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after Shutdown")
	}
}

func TestCarouselStreamStaleRender(t *testing.T) {
	a, _ := newTestApp(t)
	// The fake backend has no carousels, so the hero loads the 3 fallback slides.
	tests := []struct{ name, query string }{
		{"count differs", "count=5&fallback=true"},
		{"fallback differs", "count=3&fallback=false"},
		{"bad count", "count=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(a, "/carousel/stream/?position=top&"+tt.query)
			body := rec.Body.String()
			if !strings.Contains(body, "event: stale") {
				t.Errorf("body = %q, want stale event", body)
			}
			if strings.Contains(body, "event: hello") {
				t.Error("stale render must not start a player")
			}
			if n := a.Hub.Len(); n != 0 {
				t.Errorf("hub has %d players", n)
			}
		})
	}
}
