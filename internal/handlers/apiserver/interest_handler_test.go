package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"match-go/internal/auth"
	"match-go/internal/config"
	"match-go/internal/middleware"
	"match-go/internal/models"
	"match-go/internal/services"

	"github.com/gorilla/mux"
)

const testJWTSecret = "handler-test-secret"

var testHandlerAuthCfg = config.AuthConfig{
	JWTSecretKey:   testJWTSecret,
	AccessTokenTTL: time.Minute,
}

// stubInterestService lets each test pin the service behavior.
type stubInterestService struct {
	sendFunc        func(ctx context.Context, senderID uint, receiverUsername, message string) (*models.InterestWithUsernames, error)
	listPendingFunc func(ctx context.Context, userID uint) ([]*models.InterestWithSender, error)
	respondFunc     func(ctx context.Context, responderID uint, interestID uint, decision services.InterestDecision) (*models.InterestWithUsernames, error)
	connectionsFunc func(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
}

func (s *stubInterestService) SendInterest(ctx context.Context, senderID uint, receiverUsername, message string) (*models.InterestWithUsernames, error) {
	return s.sendFunc(ctx, senderID, receiverUsername, message)
}

func (s *stubInterestService) ListReceivedPending(ctx context.Context, userID uint) ([]*models.InterestWithSender, error) {
	return s.listPendingFunc(ctx, userID)
}

func (s *stubInterestService) RespondToInterest(ctx context.Context, responderID uint, interestID uint, decision services.InterestDecision) (*models.InterestWithUsernames, error) {
	return s.respondFunc(ctx, responderID, interestID, decision)
}

func (s *stubInterestService) ListAcceptedConnections(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	return s.connectionsFunc(ctx, userID)
}

func newInterestTestRouter(svc services.InterestService) *mux.Router {
	h := NewInterestHandler(svc)
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AuthMiddleware(testJWTSecret, nil))
	api.HandleFunc("/interests", h.SendInterestHandler).Methods(http.MethodPost)
	api.HandleFunc("/interests/received", h.ListReceivedPendingHandler).Methods(http.MethodGet)
	api.HandleFunc("/interests/accepted", h.ListAcceptedConnectionsHandler).Methods(http.MethodGet)
	api.HandleFunc("/interests/{interestID:[0-9]+}/respond", h.RespondToInterestHandler).Methods(http.MethodPatch)
	return r
}

func authedRequest(t *testing.T, method, target string, userID uint, body interface{}) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	token, err := auth.GenerateToken(userID, "tester", auth.TokenTypeAccess, time.Minute, testHandlerAuthCfg)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSendInterestHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"created", nil, http.StatusCreated},
		{"receiver not found", services.ErrReceiverNotFound, http.StatusNotFound},
		{"receiver required", services.ErrReceiverRequired, http.StatusBadRequest},
		{"self interest", services.ErrInterestSelf, http.StatusBadRequest},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubInterestService{
				sendFunc: func(_ context.Context, senderID uint, receiver, message string) (*models.InterestWithUsernames, error) {
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					return &models.InterestWithUsernames{
						Interest:         models.Interest{SenderID: senderID, ReceiverID: 2, Message: message},
						SenderUsername:   "tester",
						ReceiverUsername: receiver,
					}, nil
				},
			}
			router := newInterestTestRouter(svc)

			req := authedRequest(t, http.MethodPost, "/api/v1/interests", 1, SendInterestPayload{Receiver: "bob", Message: "hi"})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}

			if tc.wantStatus == http.StatusCreated {
				var created struct {
					Sender   string `json:"sender"`
					Receiver string `json:"receiver"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if created.Sender != "tester" || created.Receiver != "bob" {
					t.Errorf("response parties = (%q, %q), want (tester, bob)", created.Sender, created.Receiver)
				}
			}
		})
	}
}

func TestSendInterestHandlerRequiresAuth(t *testing.T) {
	router := newInterestTestRouter(&stubInterestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interests", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRespondToInterestHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		decision   string
		serviceErr error
		wantStatus int
	}{
		{"accepted", "accept", nil, http.StatusOK},
		{"rejected", "reject", nil, http.StatusOK},
		{"invalid decision", "maybe", nil, http.StatusBadRequest},
		{"not found", "accept", services.ErrInterestNotFound, http.StatusNotFound},
		{"not the receiver", "accept", services.ErrNotInterestReceiver, http.StatusForbidden},
		{"internal", "accept", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			svc := &stubInterestService{
				respondFunc: func(_ context.Context, responderID uint, interestID uint, decision services.InterestDecision) (*models.InterestWithUsernames, error) {
					called = true
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					accepted := decision == services.DecisionAccept
					return &models.InterestWithUsernames{
						Interest:         models.Interest{ReceiverID: responderID, IsAccepted: accepted, IsRejected: !accepted},
						SenderUsername:   "alice",
						ReceiverUsername: "tester",
					}, nil
				},
			}
			router := newInterestTestRouter(svc)

			req := authedRequest(t, http.MethodPatch, "/api/v1/interests/5/respond", 1, RespondToInterestPayload{Decision: tc.decision})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.name == "invalid decision" && called {
				t.Error("service must not be called for an invalid decision")
			}
		})
	}
}

func TestListReceivedPendingHandler(t *testing.T) {
	svc := &stubInterestService{
		listPendingFunc: func(_ context.Context, userID uint) ([]*models.InterestWithSender, error) {
			return []*models.InterestWithSender{
				{
					Interest: models.Interest{SenderID: 2, ReceiverID: userID, Message: "hello"},
					Sender:   &models.UserBasicInfo{ID: 2, Username: "alice"},
				},
			}, nil
		},
	}
	router := newInterestTestRouter(svc)

	req := authedRequest(t, http.MethodGet, "/api/v1/interests/received", 1, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got []struct {
		Message string `json:"message"`
		Sender  struct {
			Username string `json:"username"`
		} `json:"sender"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].Sender.Username != "alice" || got[0].Message != "hello" {
		t.Errorf("unexpected response: %s", rec.Body.String())
	}
}

func TestListAcceptedConnectionsHandlerEmpty(t *testing.T) {
	svc := &stubInterestService{
		connectionsFunc: func(_ context.Context, _ uint) ([]*models.UserBasicInfo, error) {
			return []*models.UserBasicInfo{}, nil
		},
	}
	router := newInterestTestRouter(svc)

	req := authedRequest(t, http.MethodGet, "/api/v1/interests/accepted", 1, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("empty connections body = %s, want []", body)
	}
}
