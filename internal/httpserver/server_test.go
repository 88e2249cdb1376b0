package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordgrid/assets"
	"github.com/robalobadob/wordgrid/internal/catalog"
	"github.com/robalobadob/wordgrid/internal/db"
	"github.com/robalobadob/wordgrid/internal/live"
	"github.com/robalobadob/wordgrid/internal/sessions"
	"github.com/robalobadob/wordgrid/internal/store"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestServer(t *testing.T) (*Server, *testClock) {
	return newTestServerWith(t, Options{})
}

// newTestServerWith fills the catalog, live registry and clock into opts.
func newTestServerWith(t *testing.T, opts Options) (*Server, *testClock) {
	t.Helper()
	cat, err := catalog.Parse(assets.Samples)
	require.NoError(t, err)
	clock := &testClock{t: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
	opts.Catalog = cat
	opts.Live = live.NewRegistry(live.Config{Secret: []byte("test"), HashCost: bcrypt.MinCost, Now: clock.now}, nil)
	opts.Now = clock.now
	return New(opts), clock
}

func sqliteBoards(t *testing.T) store.Store {
	t.Helper()
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "wordgrid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return store.NewSQLStore(conn)
}

// flakyLog fails every Append while failing is set.
type flakyLog struct {
	*sessions.Ring
	failing bool
}

func (l *flakyLog) Append(ctx context.Context, r sessions.Record) error {
	if l.failing {
		return fmt.Errorf("append: %w", sessions.ErrUnavailable)
	}
	return l.Ring.Append(ctx, r)
}

func do(t *testing.T, srv http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type boardBody struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Rows    int               `json:"rows"`
	Letters map[string]string `json:"letters"`
	Words   []struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Answer string `json:"answer"`
	} `json:"words"`
}

func (b boardBody) wordID(number int) string {
	for _, w := range b.Words {
		if w.Number == number {
			return w.ID
		}
	}
	return ""
}

type playBody struct {
	ID      string            `json:"id"`
	State   string            `json:"state"`
	Letters map[string]string `json:"letters"`
	Correct bool              `json:"correct"`
	Words   []struct {
		ID        string   `json:"id"`
		Number    int      `json:"number"`
		Hints     []string `json:"hints"`
		Completed bool     `json:"completed"`
	} `json:"words"`
	Summary *struct {
		FinalScore int `json:"finalScore"`
	} `json:"summary"`
	Record  *sessions.Record `json:"record"`
	Warning string           `json:"warning"`
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = do(t, srv, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditorFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	runEditorFlow(t, srv)
}

func TestEditorFlowSQLite(t *testing.T) {
	srv, _ := newTestServerWith(t, Options{Boards: sqliteBoards(t)})
	runEditorFlow(t, srv)
}

func runEditorFlow(t *testing.T, srv http.Handler) {
	w := do(t, srv, http.MethodPost, "/boards", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a name is required")

	w = do(t, srv, http.MethodPost, "/boards", `{"title":"Fruit","rows":6,"columns":6}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decodeBody[boardBody](t, w)
	assert.Equal(t, 6, b.Rows)

	edits := "/boards/" + b.ID + "/edits"
	w = do(t, srv, http.MethodPost, edits, `{"type":"save","word":{"number":1,"answer":"apple","hints":["red"],"orientation":"horizontal","startRow":1,"startCol":1}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, srv, http.MethodPost, edits, `{"type":"save","word":{"number":1,"answer":"pear","hints":["green"],"orientation":"vertical","startRow":1,"startCol":3}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Word number 1 is already in use.")

	w = do(t, srv, http.MethodPost, edits, `{"type":"save","word":{"number":2,"answer":"kiwi","hints":["fuzzy"],"orientation":"vertical","startRow":1,"startCol":3}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	issues := decodeBody[struct {
		Issues []struct {
			Type string `json:"type"`
		} `json:"issues"`
	}](t, w)
	require.Len(t, issues.Issues, 1, "K at 1:3 conflicts with P")
	assert.Equal(t, "letter-conflict", issues.Issues[0].Type)

	w = do(t, srv, http.MethodPost, "/boards/"+b.ID+"/evaluate", `{"word":{"number":2,"answer":"pear","hints":["green"],"orientation":"vertical","startRow":1,"startCol":3}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)

	w = do(t, srv, http.MethodPost, edits, `{"type":"save","word":{"number":2,"answer":"pear","hints":["green"],"orientation":"vertical","startRow":1,"startCol":3}}`)
	require.Equal(t, http.StatusOK, w.Code)
	b = decodeBody[boardBody](t, w)
	assert.Len(t, b.Words, 2)
	assert.Equal(t, "P", b.Letters["1:3"])

	// Word ids from a fresh read drive in-place edits and removal.
	w = do(t, srv, http.MethodGet, "/boards/"+b.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	stored := decodeBody[boardBody](t, w)
	pear := stored.wordID(2)
	require.NotEmpty(t, pear)
	assert.Equal(t, pear, b.wordID(2), "ids are stable across reads")

	w = do(t, srv, http.MethodPost, edits, `{"type":"save","word":{"number":2,"answer":"peer","hints":["same"],"orientation":"vertical","startRow":1,"startCol":3}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "number 2 is taken without editingId")

	w = do(t, srv, http.MethodPost, edits, `{"type":"save","editingId":"`+pear+`","word":{"number":2,"answer":"peer","hints":["same"],"orientation":"vertical","startRow":1,"startCol":3}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b = decodeBody[boardBody](t, w)
	assert.Len(t, b.Words, 2)
	assert.Equal(t, "E", b.Letters["3:3"])
	assert.Equal(t, pear, b.wordID(2))

	w = do(t, srv, http.MethodPost, edits, `{"type":"remove","id":"`+pear+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b = decodeBody[boardBody](t, w)
	require.Len(t, b.Words, 1)
	assert.Empty(t, b.Letters["3:3"])

	w = do(t, srv, http.MethodPost, edits, `{"type":"remove","id":"`+pear+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodPost, edits, `{"type":"toggle","row":1,"col":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "occupied cell")

	w = do(t, srv, http.MethodPost, edits, `{"type":"explode"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodGet, "/boards/"+b.ID+"/export?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "yaml")
	assert.Contains(t, w.Body.String(), "answer: APPLE")

	w = do(t, srv, http.MethodGet, "/boards/"+b.ID+"/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv, http.MethodPost, "/boards/import", w.Body.String())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	imported := decodeBody[boardBody](t, w)
	assert.NotEqual(t, b.ID, imported.ID)
	require.Len(t, imported.Words, 1)
	assert.NotEqual(t, b.wordID(1), imported.wordID(1), "imports get fresh word ids")

	w = do(t, srv, http.MethodGet, "/boards", "")
	list := decodeBody[[]boardBody](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, imported.ID, list[0].ID)

	w = do(t, srv, http.MethodDelete, "/boards/"+imported.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, srv, http.MethodGet, "/boards/"+imported.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlayFlowRecordsOneSession(t *testing.T) {
	srv, clock := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/plays", `{"sampleId":"orchard"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decodeBody[playBody](t, w)
	require.Len(t, p.Words, 3)
	assert.Empty(t, p.Letters)
	assert.NotContains(t, w.Body.String(), "APPLE", "answers stay on the server")

	base := "/plays/" + p.ID
	w = do(t, srv, http.MethodPost, base+"/hint", `{"wordId":"`+p.Words[0].ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	p = decodeBody[playBody](t, w)
	assert.Equal(t, []string{"Keeps the doctor away"}, p.Words[0].Hints)

	w = do(t, srv, http.MethodPost, base+"/guess", `{"wordId":"`+p.Words[0].ID+`","guess":"apricot"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeBody[playBody](t, w).Correct)

	clock.t = clock.t.Add(40 * time.Second)
	answers := []string{"apple", "PEAR", "gr ape"}
	for i, a := range answers {
		w = do(t, srv, http.MethodPost, base+"/guess", `{"wordId":"`+p.Words[i].ID+`","guess":"`+a+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	done := decodeBody[playBody](t, w)
	assert.Equal(t, "finished", done.State)
	require.NotNil(t, done.Record)
	// 3*10 - 1*2 - floor(40*0.05)
	assert.Equal(t, 26, done.Record.FinalScore)
	assert.Equal(t, "A", done.Letters["3:3"])

	w = do(t, srv, http.MethodPost, base+"/guess", `{"wordId":"`+p.Words[0].ID+`","guess":"apple"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodGet, "/sessions", "")
	records := decodeBody[[]sessions.Record](t, w)
	require.Len(t, records, 1)
	assert.Equal(t, "Orchard Opener", records[0].GameTitle)

	w = do(t, srv, http.MethodGet, "/sessions/summary", "")
	assert.Equal(t, 26, decodeBody[sessions.Summary](t, w).BestScore)

	w = do(t, srv, http.MethodPost, base+"/restart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "playing", decodeBody[playBody](t, w).State)

	w = do(t, srv, http.MethodDelete, "/sessions", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, srv, http.MethodGet, "/sessions", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGuessReportsUnsavedRecord(t *testing.T) {
	logs := &flakyLog{Ring: sessions.NewRing(0), failing: true}
	srv, _ := newTestServerWith(t, Options{Sessions: logs})

	w := do(t, srv, http.MethodPost, "/plays", `{"sampleId":"alpine"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decodeBody[playBody](t, w)

	answers := map[int]string{1: "sky", 2: "yes", 3: "ski"}
	for _, word := range p.Words {
		w = do(t, srv, http.MethodPost, "/plays/"+p.ID+"/guess", `{"wordId":"`+word.ID+`","guess":"`+answers[word.Number]+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	done := decodeBody[playBody](t, w)
	assert.Equal(t, "finished", done.State)
	require.NotNil(t, done.Record)
	assert.NotEmpty(t, done.Warning)

	records := decodeBody[[]sessions.Record](t, do(t, srv, http.MethodGet, "/sessions", ""))
	assert.Empty(t, records)

	body, err := json.Marshal(done.Record)
	require.NoError(t, err)
	w = do(t, srv, http.MethodPost, "/sessions", string(body))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	logs.failing = false
	for i := 0; i < 2; i++ {
		w = do(t, srv, http.MethodPost, "/sessions", string(body))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	records = decodeBody[[]sessions.Record](t, do(t, srv, http.MethodGet, "/sessions", ""))
	require.Len(t, records, 1, "retries are keyed by record id")
	assert.Equal(t, done.Record.ID, records[0].ID)
	assert.Equal(t, done.Record.FinalScore, records[0].FinalScore)

	w = do(t, srv, http.MethodPost, "/sessions", `{"gameId":"","finalScore":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailyNew(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodPost, "/daily/new", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decodeBody[struct {
		Date     string `json:"date"`
		SampleID string `json:"sampleId"`
	}](t, w)
	assert.Equal(t, "2026-06-01", res.Date)
	assert.Contains(t, []string{"orchard", "seaside", "alpine"}, res.SampleID)

	again := decodeBody[struct {
		SampleID string `json:"sampleId"`
	}](t, do(t, srv, http.MethodPost, "/daily/new", ""))
	assert.Equal(t, res.SampleID, again.SampleID)
}

func TestLiveFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/live", `{"gameId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodPost, "/live", `{"gameId":"seaside","hostName":"Host"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[struct {
		Code      string `json:"code"`
		HostToken string `json:"hostToken"`
	}](t, w)
	base := "/live/" + created.Code
	auth := []string{"Authorization", "Bearer " + created.HostToken}

	w = do(t, srv, http.MethodPost, base+"/join", `{"name":"Ana"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ana := decodeBody[struct {
		Player live.Player `json:"player"`
	}](t, w).Player

	w = do(t, srv, http.MethodPost, base+"/join", `{"name":"ANA"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodPost, base+"/start", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(t, srv, http.MethodPost, base+"/start", "", auth...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, srv, http.MethodPost, base+"/join", `{"name":"Late"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodPost, base+"/score", `{"playerId":"`+ana.ID+`","score":34,"hintsUsed":1,"totalTimeMs":52000}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPost, base+"/finish", "", auth...)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody[struct {
		Session     live.Session  `json:"session"`
		Leaderboard []live.Player `json:"leaderboard"`
	}](t, w)
	assert.Equal(t, live.StatusFinished, view.Session.Status)
	require.Len(t, view.Leaderboard, 1)
	assert.Equal(t, 34, view.Leaderboard[0].Score)

	w = do(t, srv, http.MethodDelete, base, "", auth...)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, srv, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
