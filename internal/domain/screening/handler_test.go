package screening

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

const intakeBody = `{
	"student": {
		"full_name": "Ana Souza",
		"age": 21,
		"registration_number": "20260101",
		"program": "Computer Science",
		"term": "4"
	},
	"phq9_answers": [1,1,1,0,0,1,0,1,0],
	"gad7_answers": [2,1,1,0,1,0,0],
	"availability": "mon/wed afternoons"
}`

func TestHandler_Intake(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(intakeBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Intake(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var got Screening
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.PHQ9Score != 5 || got.GAD7Score != 5 {
		t.Errorf("scores = %d/%d, want 5/5", got.PHQ9Score, got.GAD7Score)
	}
	if got.Status != StatusNew {
		t.Errorf("status = %s, want NEW", got.Status)
	}
}

func TestHandler_Intake_BadVector(t *testing.T) {
	h, e := newTestHandler()
	body := strings.Replace(intakeBody, "[1,1,1,0,0,1,0,1,0]", "[1,1,1]", 1)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Intake(c)
	if err == nil {
		t.Fatal("expected error for short answer vector")
	}
	var he *echo.HTTPError
	if !errorsAsHTTP(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func errorsAsHTTP(err error, target **echo.HTTPError) bool {
	he, ok := err.(*echo.HTTPError)
	if ok {
		*target = he
	}
	return ok
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	var he *echo.HTTPError
	if !errorsAsHTTP(err, &he) || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	var he *echo.HTTPError
	if !errorsAsHTTP(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Triage_OrdersBySeverity(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	post := func(body string) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		if err := h.Intake(e.NewContext(req, rec)); err != nil {
			t.Fatalf("intake failed: %v", err)
		}
	}

	post(intakeBody) // mild
	post(strings.Replace(intakeBody, "[1,1,1,0,0,1,0,1,0]", "[3,3,3,3,3,3,3,2,0]", 1)) // severe

	req := httptest.NewRequest(http.MethodGet, "/?status=NEW", nil)
	rec := httptest.NewRecorder()
	if err := h.Triage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got []Screening
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].PHQ9Score != 23 {
		t.Errorf("severe screening must lead the queue, first has score %d", got[0].PHQ9Score)
	}
}

func TestHandler_Triage_InvalidRiskParam(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?risk=EXTREME", nil)
	rec := httptest.NewRecorder()

	err := h.Triage(e.NewContext(req, rec))
	var he *echo.HTTPError
	if !errorsAsHTTP(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	svc, repo, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	sc := &Screening{Status: StatusNew}
	repo.Create(nil, sc)

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"reviewed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sc.ID.String())

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if repo.items[sc.ID].Status != StatusReviewed {
		t.Errorf("status = %s, want REVIEWED", repo.items[sc.ID].Status)
	}
}

func TestHandler_UpdateStatus_Unknown(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"BOGUS"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.UpdateStatus(c)
	var he *echo.HTTPError
	if !errorsAsHTTP(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Delete(t *testing.T) {
	svc, repo, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	sc := &Screening{Status: StatusNew}
	repo.Create(nil, sc)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sc.ID.String())

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
