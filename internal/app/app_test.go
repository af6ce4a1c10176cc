package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/kn/internal/config"
	"github.com/pders01/kn/internal/kilonova"
	"github.com/pders01/kn/internal/prompt"
	"github.com/pders01/kn/internal/search"
	"github.com/pders01/kn/internal/storage"
	"github.com/pders01/kn/internal/terminal"
)

// fakeSite is an in-memory kilonova instance.
type fakeSite struct {
	mu sync.Mutex

	pages      map[int][]kilonova.ProblemSummary
	statements map[string]string // "id/lang" -> markdown
	down       bool

	token    string
	userName string

	submitted    map[string]string
	pollsLeft    int
	score        float64
	extendCalls  int
	logoutCalls  int
	searchCalls  int
	statementHit []string
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages: map[int][]kilonova.ProblemSummary{
			1: {{ID: 11, Name: "Suma"}, {ID: 12, Name: "Produs"}},
		},
		statements: map[string]string{
			"11/ro": "# Suma\n\nGigel aduna doua numere.",
			"12/en": "# Product\n\nGigel multiplies two numbers.",
		},
		token:     "tok-123",
		userName:  "ana",
		submitted: map[string]string{},
		pollsLeft: 1,
		score:     100,
	}
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	state := "success"
	if status >= 400 {
		state = "error"
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"status": state, "data": data})
}

func (s *fakeSite) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == s.token
}

func (s *fakeSite) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /problems", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.searchCalls++
		var page int
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		results := s.pages[page]
		if results == nil {
			results = []kilonova.ProblemSummary{}
		}
		raw, _ := json.Marshal(results)
		fmt.Fprintf(w, `<html><body><kn-pb-search enc="%s"></kn-pb-search></body></html>`,
			base64.StdEncoding.EncodeToString(raw))
	})

	mux.HandleFunc("GET /api/problem/{id}/get/attachmentByName/{file}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.down {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		lang := strings.TrimSuffix(strings.TrimPrefix(r.PathValue("file"), "statement-"), ".md")
		key := r.PathValue("id") + "/" + lang
		s.statementHit = append(s.statementHit, key)
		md, ok := s.statements[key]
		if !ok {
			writeEnvelope(w, http.StatusNotFound, "attachment not found")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]string{
			"mime_type": "text/markdown",
			"data":      base64.StdEncoding.EncodeToString([]byte(md)),
		})
	})

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("username") == "ana" && q.Get("password") == "secret" {
			writeEnvelope(w, http.StatusOK, s.token)
			return
		}
		writeEnvelope(w, http.StatusBadRequest, "Invalid login details")
	})

	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.logoutCalls++
		s.mu.Unlock()
		if !s.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, http.StatusOK, "")
	})

	mux.HandleFunc("POST /api/auth/extendSession", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.extendCalls++
		s.mu.Unlock()
		writeEnvelope(w, http.StatusOK, "")
	})

	mux.HandleFunc("GET /api/user/self", func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"id": 1, "name": s.userName})
	})

	mux.HandleFunc("POST /api/submissions/submit", func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("code")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		code, _ := io.ReadAll(f)
		s.mu.Lock()
		s.submitted["problem_id"] = r.FormValue("problem_id")
		s.submitted["language"] = r.FormValue("language")
		s.submitted["filename"] = hdr.Filename
		s.submitted["code"] = string(code)
		s.mu.Unlock()
		writeEnvelope(w, http.StatusOK, 77)
	})

	mux.HandleFunc("GET /api/submissions/getByID", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		status := "finished"
		if s.pollsLeft > 0 {
			s.pollsLeft--
			status = "working"
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"status": status, "score": s.score})
	})

	return mux
}

// chunkReader returns one chunk per Read, like keys arriving one at a time.
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

const (
	keyDown   = "\x1b[B"
	keyEnter  = "\r"
	keyEsc    = "\x1b"
	keyQuit   = "q"
	cursorAt3 = "\x1b[3;1R"
)

type harness struct {
	app    *App
	site   *fakeSite
	store  *storage.Store
	cfg    *config.Config
	out    *bytes.Buffer
	screen *bytes.Buffer
	keys   []string
	opened []string
}

type recordingOpener struct {
	h *harness
}

func (o recordingOpener) Open(url string) error {
	o.h.opened = append(o.h.opened, url)
	return nil
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	site := newFakeSite()
	srv := httptest.NewServer(site.handler())
	t.Cleanup(srv.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = srv.URL

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "kn.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		site:   site,
		store:  store,
		cfg:    cfg,
		out:    &bytes.Buffer{},
		screen: &bytes.Buffer{},
	}

	client := kilonova.NewClient(srv.URL, kilonova.WithUserAgent(cfg.API.UserAgent))
	base := []Option{
		WithConsole(func() (Console, error) {
			return terminal.NewSession(&chunkReader{chunks: h.keys}, h.screen, terminal.WithSize(80, 24)), nil
		}),
		WithCredentials(func() (string, string, error) {
			return "ana", "secret", nil
		}),
		WithOpener(recordingOpener{h: h}),
	}
	h.app = New(cfg, store, client, search.NewEngine(store), h.out, append(base, opts...)...)
	return h
}

func (h *harness) script(keys ...string) {
	h.keys = keys
}

func TestSearchSelectsAndPagesStatement(t *testing.T) {
	h := newHarness(t)
	h.script(keyDown, keyEnter, cursorAt3, keyQuit)

	require.NoError(t, h.app.Search(context.Background(), "su"))

	last, err := h.store.LastProblem()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), last.ID)
	assert.Equal(t, "Produs", last.Name)

	screen := h.screen.String()
	assert.Contains(t, screen, "Suma")
	assert.Contains(t, screen, "#12 Produs")
	assert.Contains(t, screen, "multiplies")

	cached, err := h.store.GetStatement(12)
	require.NoError(t, err)
	assert.Equal(t, "en", cached.Language)
	assert.Equal(t, []string{"12/ro", "12/en"}, h.site.statementHit)
}

func TestSearchCancelled(t *testing.T) {
	h := newHarness(t)
	h.script(keyEsc)

	require.NoError(t, h.app.Search(context.Background(), "su"))
	assert.Contains(t, h.out.String(), "Search cancelled.")

	_, err := h.store.LastProblem()
	assert.ErrorIs(t, err, storage.ErrNotSet)
}

func TestSearchStatementMissing(t *testing.T) {
	h := newHarness(t)
	h.site.pages[1] = []kilonova.ProblemSummary{{ID: 99, Name: "Fara enunt"}}
	h.script(keyEnter)

	require.NoError(t, h.app.Search(context.Background(), "x"))
	assert.Contains(t, h.out.String(), "No statement found for this problem.")

	last, err := h.store.LastProblem()
	require.NoError(t, err)
	assert.Equal(t, uint64(99), last.ID)
}

func TestViewRequiresLastProblem(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.app.View(context.Background()), ErrNoLastProblem)
}

func TestViewUsesStatementLanguagePreference(t *testing.T) {
	h := newHarness(t)
	h.site.statements["11/en"] = "# Sum\n\nGigel adds two numbers."
	require.NoError(t, h.store.SetLastProblem(11, "Suma"))
	require.NoError(t, h.app.SetStatementLanguage("en"))
	h.script(cursorAt3, keyQuit)

	require.NoError(t, h.app.View(context.Background()))
	assert.Contains(t, h.screen.String(), "adds")
	assert.Equal(t, []string{"11/en"}, h.site.statementHit)
}

func TestViewFallsBackToCache(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetLastProblem(11, "Suma"))
	require.NoError(t, h.store.SaveStatement(&storage.Statement{
		ProblemID: 11, Name: "Suma", Language: "ro", Content: "Copie locala Gigel.",
	}))
	h.site.down = true
	h.script(cursorAt3, keyQuit)

	require.NoError(t, h.app.View(context.Background()))
	assert.Contains(t, h.out.String(), "cached copy")
	assert.Contains(t, h.screen.String(), "locala")
}

func TestViewServerDownWithoutCache(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetLastProblem(11, "Suma"))
	h.site.down = true

	err := h.app.View(context.Background())
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SaveStatement(&storage.Statement{ProblemID: 5, Name: "Rucsac", Content: "programare dinamica"}))
	h.script(keyEnter, cursorAt3, keyQuit)

	require.NoError(t, h.app.History(context.Background(), ""))
	assert.Contains(t, h.screen.String(), "Rucsac  #5")
	assert.Contains(t, h.screen.String(), "dinamica")

	last, err := h.store.LastProblem()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), last.ID)
	assert.Zero(t, h.site.searchCalls)
}

func TestHistoryEmpty(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.History(context.Background(), "nimic"))
	assert.Contains(t, h.out.String(), "No statements viewed yet.")
}

func TestLoginLogout(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.app.Login(context.Background()))
	token, err := h.store.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.Contains(t, h.out.String(), "Logged in as ana.")

	require.NoError(t, h.app.Logout(context.Background()))
	_, err = h.store.Token()
	assert.ErrorIs(t, err, storage.ErrNotSet)
	assert.Equal(t, 1, h.site.logoutCalls)

	assert.ErrorIs(t, h.app.Logout(context.Background()), ErrNotLoggedIn)
}

func TestLoginWrongCredentials(t *testing.T) {
	h := newHarness(t, WithCredentials(func() (string, string, error) {
		return "ana", "wrong", nil
	}))

	err := h.app.Login(context.Background())
	assert.ErrorIs(t, err, kilonova.ErrLoginFailed)
	_, err = h.store.Token()
	assert.ErrorIs(t, err, storage.ErrNotSet)
}

func TestLoginAborted(t *testing.T) {
	h := newHarness(t, WithCredentials(func() (string, string, error) {
		return "", "", prompt.ErrAborted
	}))
	assert.ErrorIs(t, h.app.Login(context.Background()), prompt.ErrAborted)
}

func TestLogoutWithExpiredToken(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetToken("stale"))

	require.NoError(t, h.app.Logout(context.Background()))
	_, err := h.store.Token()
	assert.ErrorIs(t, err, storage.ErrNotSet)
}

func TestMe(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.app.Me(context.Background()), ErrNotLoggedIn)

	require.NoError(t, h.store.SetToken("tok-123"))
	require.NoError(t, h.app.Me(context.Background()))
	assert.Contains(t, h.out.String(), "Logged in as ana.")

	require.NoError(t, h.store.SetToken("stale"))
	assert.ErrorIs(t, h.app.Me(context.Background()), ErrNotLoggedIn)
}

func TestStart(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background(), "1.2.0"))
	out := h.out.String()
	assert.Contains(t, out, "v1.2.0")
	assert.Contains(t, out, "is reachable")
	assert.Contains(t, out, "not logged in")
	assert.Zero(t, h.site.extendCalls)

	h.out.Reset()
	require.NoError(t, h.store.SetToken("tok-123"))
	require.NoError(t, h.app.Start(context.Background(), "1.2.0"))
	out = h.out.String()
	assert.Contains(t, out, "Session extended")
	assert.Contains(t, out, "Logged in as ana.")
	assert.Equal(t, 1, h.site.extendCalls)
}

func writeSource(t *testing.T, name, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))
	return path
}

func TestSubmitPreconditions(t *testing.T) {
	h := newHarness(t)
	src := writeSource(t, "sol.cpp", "int main(){}")

	_, err := h.app.Submit(context.Background(), src)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, h.store.SetToken("tok-123"))
	_, err = h.app.Submit(context.Background(), src)
	assert.ErrorIs(t, err, ErrNoLastProblem)
}

func TestSubmitDetectsLanguageAndWaitsForScore(t *testing.T) {
	h := newHarness(t)
	h.site.score = 63.7
	require.NoError(t, h.store.SetToken("tok-123"))
	require.NoError(t, h.store.SetLastProblem(11, "Suma"))
	src := writeSource(t, "sol.py", "print(sum(map(int, input().split())))")

	res, err := h.app.Submit(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(77), res.ID)
	assert.Equal(t, "python3", res.Language)
	assert.Equal(t, 63, res.Score)

	assert.Equal(t, "11", h.site.submitted["problem_id"])
	assert.Equal(t, "python3", h.site.submitted["language"])
	assert.Equal(t, "sol.py", h.site.submitted["filename"])
	assert.Contains(t, h.site.submitted["code"], "print")

	out := h.out.String()
	assert.Contains(t, out, "Submitted sol.py as #77.")
	assert.Contains(t, out, "Score: 63")
}

func TestSubmitLanguageResolution(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetToken("tok-123"))
	require.NoError(t, h.store.SetLastProblem(11, "Suma"))

	res, err := h.app.Submit(context.Background(), writeSource(t, "answer.weird", "42"))
	require.NoError(t, err)
	assert.Equal(t, "cpp17", res.Language)

	require.NoError(t, h.app.SetLanguage("rust"))
	res, err = h.app.Submit(context.Background(), writeSource(t, "sol.py", "print(1)"))
	require.NoError(t, err)
	assert.Equal(t, "rust", res.Language)
}

func TestSubmitRejectsBadFile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetToken("tok-123"))
	require.NoError(t, h.store.SetLastProblem(11, "Suma"))

	_, err := h.app.Submit(context.Background(), writeSource(t, "empty.cpp", ""))
	assert.Error(t, err)
	assert.Empty(t, h.site.submitted)
}

func TestSubmitTimeout(t *testing.T) {
	h := newHarness(t)
	h.site.pollsLeft = 1 << 30
	h.cfg.Submit.Timeout = 50 * time.Millisecond
	require.NoError(t, h.store.SetToken("tok-123"))
	require.NoError(t, h.store.SetLastProblem(11, "Suma"))

	_, err := h.app.Submit(context.Background(), writeSource(t, "sol.cpp", "int main(){}"))
	assert.ErrorContains(t, err, "not evaluated within")
}

func TestSetLanguage(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.app.SetLanguage("go"))
	lang, err := h.store.String(storage.SettingLanguage)
	require.NoError(t, err)
	assert.Equal(t, "go", lang)

	err = h.app.SetLanguage("cobol")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.ErrorContains(t, err, "cpp17")
}

func TestSetStatementLanguage(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.app.SetStatementLanguage("ro"))
	assert.Contains(t, h.out.String(), "Statement language set to ro.")
	assert.ErrorIs(t, h.app.SetStatementLanguage("fr"), ErrUnsupportedLanguage)
}

func TestStatementLanguagesOrder(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"ro", "en"}, h.app.statementLanguages())

	require.NoError(t, h.store.Set(storage.SettingStatementLanguage, "en"))
	assert.Equal(t, []string{"en", "ro"}, h.app.statementLanguages())
}

func TestOpen(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.app.Open(), ErrNoLastProblem)

	require.NoError(t, h.store.SetLastProblem(11, "Suma"))
	require.NoError(t, h.app.Open())
	require.Len(t, h.opened, 1)
	assert.True(t, strings.HasSuffix(h.opened[0], "/problems/11"))
}
