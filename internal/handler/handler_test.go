package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/locale"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/tracker"
)

var handlerNow = time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local)

type memoryStore struct {
	payload []byte
	saveErr error
}

func (s *memoryStore) Load(context.Context) ([]byte, error) {
	if s.payload == nil {
		return nil, service.ErrSnapshotNotFound
	}
	return s.payload, nil
}

func (s *memoryStore) Save(_ context.Context, _ int, payload []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.payload = append([]byte(nil), payload...)
	return nil
}

func newTestEngine(t *testing.T, store *memoryStore) (*gin.Engine, *API) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return handlerNow }
	svc, err := service.NewTrackerService(context.Background(), store, service.WithClock(clock))
	if err != nil {
		t.Fatalf("NewTrackerService returned error: %v", err)
	}
	api := NewAPI(svc, "")
	api.now = clock

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	g := r.Group("/api", api.AuthRequired())
	g.GET("/document", api.GetDocumentMeta)
	g.GET("/habits", api.ListHabits)
	g.POST("/habits", api.CreateHabit)
	g.GET("/habits/:id", api.GetHabit)
	g.PUT("/habits/:id", api.UpdateHabit)
	g.POST("/habits/:id/archive", api.ToggleArchiveHabit)
	g.GET("/habits/:id/stats", api.GetHabitStats)
	g.GET("/days/:date", api.GetDay)
	g.PUT("/days/:date/habits/:id", api.SetEntry)
	g.POST("/days/:date/mark-all", api.MarkAll)
	g.GET("/stats", api.GetStats)
	g.GET("/heatmap", api.GetHeatmap)
	g.PUT("/session/selection", api.UpdateSelection)
	g.GET("/export/json", api.ExportJSON)
	g.GET("/export/csv", api.ExportCSV)
	g.GET("/export/xlsx", api.ExportXLSX)
	g.POST("/import", api.Import)
	return r, api
}

func performJSON(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestHabitLifecycle(t *testing.T) {
	r, _ := newTestEngine(t, &memoryStore{})

	rr := performJSON(r, http.MethodPost, "/api/habits", `{"name":"Read","schedule":[7,1,1],"target":0,"notes":"**20** pages"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected create to succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	habit := decodeBody(t, rr)["habit"].(map[string]interface{})
	id := habit["id"].(string)
	if habit["target"].(float64) != 1 || habit["color"] != "#5b8cff" {
		t.Fatalf("expected defaults to be applied, got %+v", habit)
	}
	if !strings.Contains(habit["notes_html"].(string), "<strong>20</strong>") {
		t.Fatalf("expected rendered notes, got %q", habit["notes_html"])
	}
	if _, ok := decodeBody(t, rr)["warning"]; ok {
		t.Fatal("expected no warning on a successful write")
	}

	rr = performJSON(r, http.MethodPut, "/api/habits/"+id, `{"name":"  ","schedule":[1]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected blank name to be rejected, got %d", rr.Code)
	}

	rr = performJSON(r, http.MethodPut, "/api/habits/"+id, `{"name":"Read more","schedule":[1,2]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected update to succeed, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = performJSON(r, http.MethodPost, "/api/habits/"+id+"/archive", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected archive to succeed, got %d", rr.Code)
	}
	if archived := decodeBody(t, rr)["habit"].(map[string]interface{})["archived"]; archived != true {
		t.Fatalf("expected habit to be archived, got %v", archived)
	}

	rr = performJSON(r, http.MethodGet, "/api/habits?status=archived", "")
	habits := decodeBody(t, rr)["habits"].([]interface{})
	if len(habits) != 1 {
		t.Fatalf("expected one archived habit, got %d", len(habits))
	}

	rr = performJSON(r, http.MethodGet, "/api/habits/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown habit, got %d", rr.Code)
	}
}

func TestDayViewAndEntries(t *testing.T) {
	r, api := newTestEngine(t, &memoryStore{})
	habits := api.tracker.ListHabits(tracker.HabitFilter{Status: "active", Query: "water"})
	if len(habits) != 1 {
		t.Fatalf("expected seeded daily habit, got %+v", habits)
	}
	waterID := habits[0].ID

	rr := performJSON(r, http.MethodGet, "/api/days/today", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected day view, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["date"] != "2024-01-03" || body["due"].(float64) != 2 || body["weekday"].(float64) != 3 {
		t.Fatalf("unexpected day view: %+v", body)
	}

	rr = performJSON(r, http.MethodPut, "/api/days/2024-01-03/habits/"+waterID, `{"done":true,"note":"two liters"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected entry update, got %d: %s", rr.Code, rr.Body.String())
	}
	entry := decodeBody(t, rr)["entry"].(map[string]interface{})
	if entry["done"] != true || entry["value"].(float64) != 1 || entry["note"] != "two liters" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	rr = performJSON(r, http.MethodPut, "/api/days/2024-01-03/habits/missing", `{"done":true}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected unknown habit to be 404, got %d", rr.Code)
	}
	if len(api.tracker.Document().Day("2024-01-03")) != 1 {
		t.Fatal("expected unknown habit write to be a no-op")
	}

	rr = performJSON(r, http.MethodPut, "/api/days/2024-13-01/habits/"+waterID, `{"done":true}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid date to be rejected, got %d", rr.Code)
	}

	rr = performJSON(r, http.MethodPut, "/api/days/2024-01-03/habits/"+waterID, `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected empty payload to be rejected, got %d", rr.Code)
	}

	rr = performJSON(r, http.MethodPost, "/api/days/2024-01-03/mark-all", `{"done":true}`)
	if rr.Code != http.StatusOK || decodeBody(t, rr)["marked"].(float64) != 2 {
		t.Fatalf("expected two habits marked, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStatsUsesSessionSelection(t *testing.T) {
	r, _ := newTestEngine(t, &memoryStore{})

	performJSON(r, http.MethodPost, "/api/days/2024-01-03/mark-all", `{"done":true}`)

	rr := performJSON(r, http.MethodGet, "/api/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected stats, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	stats := body["stats"].(map[string]interface{})
	if body["month"] != "2024-01" || stats["done_count"].(float64) != 2 || stats["due_count"].(float64) != 2 {
		t.Fatalf("unexpected stats: %+v", body)
	}

	rr = performJSON(r, http.MethodPut, "/api/session/selection", `{"date":"2024-02-05"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected selection to be stored, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()

	rr = performJSON(r, http.MethodGet, "/api/stats", "", cookies...)
	body = decodeBody(t, rr)
	stats = body["stats"].(map[string]interface{})
	if body["month"] != "2024-02" || stats["date"] != "2024-02-05" {
		t.Fatalf("expected session selection to apply, got %+v", body)
	}

	rr = performJSON(r, http.MethodGet, "/api/stats?month=2024-1", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected malformed month to be rejected, got %d", rr.Code)
	}
}

func TestHabitStatsDefaultsToRecentWindow(t *testing.T) {
	r, api := newTestEngine(t, &memoryStore{})
	waterID := api.tracker.Document().Habits[0].ID

	performJSON(r, http.MethodPut, "/api/days/2024-01-02/habits/"+waterID, `{"done":true}`)
	performJSON(r, http.MethodPut, "/api/days/2024-01-03/habits/"+waterID, `{"done":true}`)

	rr := performJSON(r, http.MethodGet, "/api/habits/"+waterID+"/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected stats, got %d: %s", rr.Code, rr.Body.String())
	}
	stats := decodeBody(t, rr)["stats"].(map[string]interface{})
	if stats["range_start"] != "2023-12-05" || stats["range_end"] != "2024-01-03" {
		t.Fatalf("unexpected range: %+v", stats)
	}
	if stats["longest_streak"].(float64) != 2 {
		t.Fatalf("expected streak of 2, got %v", stats["longest_streak"])
	}
	completion := stats["completion"].(map[string]interface{})
	if completion["completed"].(float64) != 2 || completion["total"].(float64) != 30 {
		t.Fatalf("unexpected completion: %+v", completion)
	}
}

func TestExportAndImport(t *testing.T) {
	r, api := newTestEngine(t, &memoryStore{})
	waterID := api.tracker.Document().Habits[0].ID
	performJSON(r, http.MethodPut, "/api/days/2024-01-03/habits/"+waterID, `{"done":true}`)

	rr := performJSON(r, http.MethodGet, "/api/export/json", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected json export, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "habit-tracker-2024-01-03.json") {
		t.Fatalf("unexpected disposition %q", got)
	}
	exported := rr.Body.Bytes()

	rr = performJSON(r, http.MethodGet, "/api/export/csv", "")
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv export: %v", err)
	}
	if len(records) != 2 || records[1][0] != "2024-01-03" {
		t.Fatalf("unexpected csv export: %v", records)
	}

	rr = performJSON(r, http.MethodGet, "/api/export/xlsx", "")
	if rr.Code != http.StatusOK || !bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected xlsx workbook, got %d", rr.Code)
	}

	rr = performJSON(r, http.MethodPost, "/api/import", `{"habits": "nope"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected malformed import to be rejected, got %d", rr.Code)
	}

	performJSON(r, http.MethodPost, "/api/days/2024-01-03/mark-all", `{"done":false}`)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "backup.json")
	part.Write(exported)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected multipart import, got %d: %s", rr.Code, rr.Body.String())
	}
	if !api.tracker.Document().IsDone(waterID, "2024-01-03") {
		t.Fatal("expected imported document to restore the log entry")
	}
}

func TestPersistenceWarningIsReported(t *testing.T) {
	store := &memoryStore{}
	r, _ := newTestEngine(t, store)
	store.saveErr = errors.New("disk full")

	rr := performJSON(r, http.MethodPost, "/api/habits", `{"name":"Stretch"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected write to succeed in memory, got %d", rr.Code)
	}
	if decodeBody(t, rr)["warning"] != locale.Message(locale.LanguageChinese, locale.MsgPersistenceWarning) {
		t.Fatalf("expected persistence warning, got %s", rr.Body.String())
	}

	rr = performJSON(r, http.MethodGet, "/api/habits?q=stretch", "")
	if habits := decodeBody(t, rr)["habits"].([]interface{}); len(habits) != 1 {
		t.Fatalf("expected habit to stay in memory, got %d", len(habits))
	}
}

func TestHeatmapDefaultsToTwelveWeeks(t *testing.T) {
	r, _ := newTestEngine(t, &memoryStore{})
	performJSON(r, http.MethodPost, "/api/days/2024-01-03/mark-all", `{"done":true}`)

	rr := performJSON(r, http.MethodGet, "/api/heatmap", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected heatmap, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	days := body["days"].([]interface{})
	if body["end"] != "2024-01-03" || len(days) != defaultHeatmapDays {
		t.Fatalf("unexpected heatmap window: start=%v end=%v days=%d", body["start"], body["end"], len(days))
	}
	last := days[len(days)-1].(map[string]interface{})
	if last["completed"].(float64) != 2 || last["due"].(float64) != 2 {
		t.Fatalf("unexpected last day: %+v", last)
	}

	rr = performJSON(r, http.MethodGet, "/api/heatmap?start=2024-01-05&end=2024-01-01", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected reversed range to be rejected, got %d", rr.Code)
	}
}

func TestErrorMessagesFollowRequestLanguage(t *testing.T) {
	r, _ := newTestEngine(t, &memoryStore{})

	rr := performJSON(r, http.MethodGet, "/api/habits/missing", "")
	if got := decodeBody(t, rr)["error"]; got != "习惯不存在" {
		t.Fatalf("expected chinese default, got %v", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/habits/missing", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if got := decodeBody(t, rr)["error"]; got != "Habit not found" {
		t.Fatalf("expected english message, got %v", got)
	}

	rr = performJSON(r, http.MethodPost, "/api/habits?lang=en", `{"name":"Run","reminder_time":"7pm"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected validation failure, got %d", rr.Code)
	}
	if got := decodeBody(t, rr)["error"].(string); !strings.HasPrefix(got, "reminder time must be HH:MM") {
		t.Fatalf("expected validation detail, got %q", got)
	}
}
