package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "mentorbook/pkg/errors"
	httputil "mentorbook/pkg/http"
	"mentorbook/pkg/logger"
	"mentorbook/pkg/middleware"
	"mentorbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const testMentorID = "64b7f0c2a1b2c3d4e5f60718"

type mockAvailabilityService struct {
	createFunc       func(ctx context.Context, a *model.Availability, requesterID, role string) error
	getByIDFunc      func(ctx context.Context, id string) (*model.Availability, error)
	listByMentorFunc func(ctx context.Context, mentorID string, limit int, offset int64) ([]*model.Availability, int64, error)
}

func (m *mockAvailabilityService) Create(ctx context.Context, a *model.Availability, requesterID, role string) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, a, requesterID, role)
	}
	return nil
}

func (m *mockAvailabilityService) GetByID(ctx context.Context, id string) (*model.Availability, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Availability{ID: id}, nil
}

func (m *mockAvailabilityService) ListByMentor(ctx context.Context, mentorID string, limit int, offset int64) ([]*model.Availability, int64, error) {
	if m.listByMentorFunc != nil {
		return m.listByMentorFunc(ctx, mentorID, limit, offset)
	}
	return []*model.Availability{}, 0, nil
}

func serve(svc *mockAvailabilityService, req *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewAvailabilityHandler(svc, logger.Discard()).RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreate(t *testing.T) {
	var gotRequester, gotRole string
	svc := &mockAvailabilityService{
		createFunc: func(ctx context.Context, a *model.Availability, requesterID, role string) error {
			gotRequester, gotRole = requesterID, role
			a.ID = "64b7f0c2a1b2c3d4e5f60799"
			a.MentorID = requesterID
			return nil
		},
	}

	body := `{"startTime":"2030-03-01T09:00:00Z","endTime":"2030-03-01T17:00:00Z","capacity":2}`
	req := httptest.NewRequest(http.MethodPost, "/availabilities", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), testMentorID, middleware.RoleMentor))

	w := serve(svc, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if gotRequester != testMentorID || gotRole != middleware.RoleMentor {
		t.Errorf("requester not forwarded: %s %s", gotRequester, gotRole)
	}

	var created model.Availability
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" || created.Capacity != 2 {
		t.Errorf("unexpected body: %+v", created)
	}
}

func TestCreate_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/availabilities", strings.NewReader(`{}`))
	w := serve(&mockAvailabilityService{}, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestList(t *testing.T) {
	var gotMentor string
	svc := &mockAvailabilityService{
		listByMentorFunc: func(ctx context.Context, mentorID string, limit int, offset int64) ([]*model.Availability, int64, error) {
			gotMentor = mentorID
			return []*model.Availability{{MentorID: mentorID}}, 1, nil
		},
	}

	w := serve(svc, httptest.NewRequest(http.MethodGet, "/availabilities?mentor_id="+testMentorID, nil))

	if w.Code != http.StatusOK || gotMentor != testMentorID {
		t.Errorf("status = %d, mentor = %q", w.Code, gotMentor)
	}
	var resp httputil.PaginatedResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Limit != httputil.DefaultPaginationLimit {
		t.Errorf("limit = %d, want default %d", resp.Limit, httputil.DefaultPaginationLimit)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockAvailabilityService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Availability, error) {
			return nil, apperrors.NotFoundWithID("Availability", id)
		},
	}

	w := serve(svc, httptest.NewRequest(http.MethodGet, "/availabilities/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
