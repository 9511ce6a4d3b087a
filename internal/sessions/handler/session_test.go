package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "mentorbook/pkg/errors"
	httputil "mentorbook/pkg/http"
	"mentorbook/pkg/logger"
	"mentorbook/pkg/middleware"
	"mentorbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	testMentorID = "64b7f0c2a1b2c3d4e5f60718"
	testMenteeID = "64b7f0c2a1b2c3d4e5f60719"
)

type mockSessionService struct {
	bookFunc    func(ctx context.Context, req *model.SessionBookingRequest) (*model.Session, error)
	getByIDFunc func(ctx context.Context, id, requesterID, role string) (*model.Session, error)
	listFunc    func(ctx context.Context, filter model.SessionFilter, requesterID, role string, limit int, offset int64) ([]*model.Session, int64, error)
	cancelFunc  func(ctx context.Context, id, requesterID string, req *model.SessionCancelRequest) (*model.Session, error)
	confirmFunc func(ctx context.Context, id, requesterID string) (*model.Session, error)
}

func (m *mockSessionService) Book(ctx context.Context, req *model.SessionBookingRequest) (*model.Session, error) {
	if m.bookFunc != nil {
		return m.bookFunc(ctx, req)
	}
	return &model.Session{}, nil
}

func (m *mockSessionService) GetByID(ctx context.Context, id, requesterID, role string) (*model.Session, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id, requesterID, role)
	}
	return &model.Session{ID: id}, nil
}

func (m *mockSessionService) List(ctx context.Context, filter model.SessionFilter, requesterID, role string, limit int, offset int64) ([]*model.Session, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, requesterID, role, limit, offset)
	}
	return []*model.Session{}, 0, nil
}

func (m *mockSessionService) Cancel(ctx context.Context, id, requesterID string, req *model.SessionCancelRequest) (*model.Session, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, requesterID, req)
	}
	return &model.Session{ID: id}, nil
}

func (m *mockSessionService) Confirm(ctx context.Context, id, requesterID string) (*model.Session, error) {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, id, requesterID)
	}
	return &model.Session{ID: id}, nil
}

func newTestRouter(svc *mockSessionService) *httprouter.Router {
	router := httprouter.New()
	NewSessionHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func authedRequest(method, target, body, userID, role string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.WithUser(req.Context(), userID, role))
	}
	return req
}

const bookingBody = `{"mentorId":"64b7f0c2a1b2c3d4e5f60718","scheduledAt":"2030-03-01T14:00:00Z","durationMinutes":60,"subject":"Career planning"}`

func TestBook_Created(t *testing.T) {
	var received *model.SessionBookingRequest
	svc := &mockSessionService{
		bookFunc: func(ctx context.Context, req *model.SessionBookingRequest) (*model.Session, error) {
			received = req
			return &model.Session{
				ID:          "64b7f0c2a1b2c3d4e5f60720",
				MentorID:    req.MentorID,
				MenteeID:    req.MenteeID,
				ScheduledAt: req.ScheduledAt,
				Status:      model.SessionStatusPending,
			}, nil
		},
	}

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, authedRequest(http.MethodPost, "/sessions", bookingBody, testMenteeID, middleware.RoleMentee))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
	}
	if received.MenteeID != testMenteeID {
		t.Errorf("mentee should come from the token, got %q", received.MenteeID)
	}
	if !received.ScheduledAt.Equal(time.Date(2030, 3, 1, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("scheduledAt parsed as %v", received.ScheduledAt)
	}

	var resp model.SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Session == nil || resp.Session.Status != model.SessionStatusPending {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestBook_ClientMenteeIDIgnored(t *testing.T) {
	var received *model.SessionBookingRequest
	svc := &mockSessionService{
		bookFunc: func(ctx context.Context, req *model.SessionBookingRequest) (*model.Session, error) {
			received = req
			return &model.Session{}, nil
		},
	}

	body := `{"mentorId":"64b7f0c2a1b2c3d4e5f60718","menteeId":"64b7f0c2a1b2c3d4e5f600aa","scheduledAt":"2030-03-01T14:00:00Z","durationMinutes":60,"subject":"Hi there"}`
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, authedRequest(http.MethodPost, "/sessions", body, testMenteeID, middleware.RoleMentee))

	if received == nil || received.MenteeID != testMenteeID {
		t.Errorf("menteeId in body must not override the token subject")
	}
}

func TestBook_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		role        string
		body        string
		serviceErr  error
		wantStatus  int
		wantCode    string
		retryAfter  bool
		serviceHits int
	}{
		{name: "unauthenticated", body: bookingBody, wantStatus: http.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "mentor cannot book", userID: testMentorID, role: middleware.RoleMentor, body: bookingBody, wantStatus: http.StatusForbidden, wantCode: apperrors.CodeForbidden},
		{name: "malformed body", userID: testMenteeID, role: middleware.RoleMentee, body: `{"mentorId":`, wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "slot full", userID: testMenteeID, role: middleware.RoleMentee, body: bookingBody, serviceErr: apperrors.SlotFull("This slot is fully booked"), wantStatus: http.StatusConflict, wantCode: apperrors.CodeSlotFull, serviceHits: 1},
		{name: "slot locked", userID: testMenteeID, role: middleware.RoleMentee, body: bookingBody, serviceErr: apperrors.SlotLocked("busy"), wantStatus: http.StatusConflict, wantCode: apperrors.CodeSlotLocked, retryAfter: true, serviceHits: 1},
		{name: "validation", userID: testMenteeID, role: middleware.RoleMentee, body: bookingBody, serviceErr: apperrors.Validation("bad", map[string]any{"subject": "subject is required"}), wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeValidation, serviceHits: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := 0
			svc := &mockSessionService{
				bookFunc: func(ctx context.Context, req *model.SessionBookingRequest) (*model.Session, error) {
					hits++
					return nil, tt.serviceErr
				},
			}

			w := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(w, authedRequest(http.MethodPost, "/sessions", tt.body, tt.userID, tt.role))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp httputil.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Error != tt.wantCode {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantCode)
			}
			if got := w.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Errorf("Retry-After present = %v, want %v", got, tt.retryAfter)
			}
			if hits != tt.serviceHits {
				t.Errorf("service called %d times, want %d", hits, tt.serviceHits)
			}
		})
	}
}

func TestList_PassesFilterAndPagination(t *testing.T) {
	var gotFilter model.SessionFilter
	var gotLimit int
	var gotOffset int64
	svc := &mockSessionService{
		listFunc: func(ctx context.Context, filter model.SessionFilter, requesterID, role string, limit int, offset int64) ([]*model.Session, int64, error) {
			gotFilter, gotLimit, gotOffset = filter, limit, offset
			return []*model.Session{{ID: "a"}}, 7, nil
		},
	}

	w := httptest.NewRecorder()
	target := "/sessions?mentor_id=" + testMentorID + "&status=pending&limit=500&offset=3"
	newTestRouter(svc).ServeHTTP(w, authedRequest(http.MethodGet, target, "", testMentorID, middleware.RoleMentor))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotFilter.MentorID != testMentorID || gotFilter.Status != model.SessionStatusPending {
		t.Errorf("unexpected filter: %+v", gotFilter)
	}
	if gotLimit != httputil.MaxPaginationLimit || gotOffset != 3 {
		t.Errorf("limit/offset = %d/%d", gotLimit, gotOffset)
	}

	var resp httputil.PaginatedResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalCount != 7 {
		t.Errorf("total_count = %d, want 7", resp.TotalCount)
	}
}

func TestList_InvalidLimit(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(&mockSessionService{}).ServeHTTP(w, authedRequest(http.MethodGet, "/sessions?limit=abc", "", testMenteeID, middleware.RoleMentee))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCancelAndConfirm(t *testing.T) {
	var cancelReason, confirmedBy string
	svc := &mockSessionService{
		cancelFunc: func(ctx context.Context, id, requesterID string, req *model.SessionCancelRequest) (*model.Session, error) {
			cancelReason = req.Reason
			return &model.Session{ID: id, Status: model.SessionStatusCancelled}, nil
		},
		confirmFunc: func(ctx context.Context, id, requesterID string) (*model.Session, error) {
			confirmedBy = requesterID
			return nil, apperrors.Conflict("Session cannot be confirmed")
		},
	}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/sessions/abc/cancel", `{"reason":"sick"}`, testMenteeID, middleware.RoleMentee))
	if w.Code != http.StatusOK || cancelReason != "sick" {
		t.Errorf("cancel: status = %d, reason = %q", w.Code, cancelReason)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/sessions/abc/cancel", "", testMenteeID, middleware.RoleMentee))
	if w.Code != http.StatusOK {
		t.Errorf("cancel without body: status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/sessions/abc/confirm", "", testMentorID, middleware.RoleMentor))
	if w.Code != http.StatusConflict || confirmedBy != testMentorID {
		t.Errorf("confirm: status = %d, confirmedBy = %q", w.Code, confirmedBy)
	}
}

func TestGetByID_PassesRequester(t *testing.T) {
	var gotID, gotUser, gotRole string
	svc := &mockSessionService{
		getByIDFunc: func(ctx context.Context, id, requesterID, role string) (*model.Session, error) {
			gotID, gotUser, gotRole = id, requesterID, role
			return nil, apperrors.NotFoundWithID("Session", id)
		},
	}

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, authedRequest(http.MethodGet, "/sessions/xyz", "", testMenteeID, middleware.RoleMentee))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if gotID != "xyz" || gotUser != testMenteeID || gotRole != middleware.RoleMentee {
		t.Errorf("unexpected args: %s %s %s", gotID, gotUser, gotRole)
	}
}
