package apiserver

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"match-go/internal/auth"
	"match-go/internal/config"
	"match-go/internal/matchtypes"
	"match-go/internal/middleware"
	"match-go/internal/models"
	"match-go/internal/services"

	"github.com/gorilla/mux"
)

type stubStorageService struct {
	uploadFunc func(ctx context.Context, reader io.Reader, fileSize int64, fileName, mimeType string) (*matchtypes.FileInfo, error)
}

func (s *stubStorageService) UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName, mimeType string) (*matchtypes.FileInfo, error) {
	return s.uploadFunc(ctx, reader, fileSize, fileName, mimeType)
}

type stubUserService struct {
	updateAvatarFunc func(ctx context.Context, userID uint, avatarURL string) (*models.User, error)
}

func (s *stubUserService) ListUsers(_ context.Context) ([]models.User, error) { return nil, nil }

func (s *stubUserService) GetUserProfile(_ context.Context, _ uint) (*models.User, error) {
	return nil, services.ErrUserNotFound
}

func (s *stubUserService) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) (*models.User, error) {
	return s.updateAvatarFunc(ctx, userID, avatarURL)
}

func newUploadTestRouter(storageSvc matchtypes.StorageService, userSvc services.UserService, cfg config.StorageConfig) *mux.Router {
	h := NewUploadHandler(storageSvc, userSvc, cfg)
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AuthMiddleware(testJWTSecret, nil))
	api.HandleFunc("/users/me/avatar", h.UploadAvatarHandler).Methods(http.MethodPost)
	return r
}

func multipartAvatarRequest(t *testing.T, userID uint, fileContent []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "avatar.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(fileContent); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	token, err := auth.GenerateToken(userID, "tester", auth.TokenTypeAccess, time.Minute, testHandlerAuthCfg)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAvatarHandler(t *testing.T) {
	var gotURL string
	storageSvc := &stubStorageService{
		uploadFunc: func(_ context.Context, _ io.Reader, fileSize int64, fileName, mimeType string) (*matchtypes.FileInfo, error) {
			return &matchtypes.FileInfo{URL: "/uploads/abc.png", Size: fileSize, FileName: fileName, MimeType: mimeType}, nil
		},
	}
	userSvc := &stubUserService{
		updateAvatarFunc: func(_ context.Context, _ uint, avatarURL string) (*models.User, error) {
			gotURL = avatarURL
			return &models.User{AvatarURL: avatarURL}, nil
		},
	}
	router := newUploadTestRouter(storageSvc, userSvc, config.StorageConfig{MaxFileSizeMB: 10})

	req := multipartAvatarRequest(t, 1, []byte("fake png bytes"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if gotURL != "/uploads/abc.png" {
		t.Errorf("profile updated with URL %q, want /uploads/abc.png", gotURL)
	}
}

func TestUploadAvatarHandlerTooLarge(t *testing.T) {
	storageSvc := &stubStorageService{
		uploadFunc: func(_ context.Context, _ io.Reader, _ int64, _, _ string) (*matchtypes.FileInfo, error) {
			t.Error("storage must not be called for an oversized upload")
			return nil, nil
		},
	}
	userSvc := &stubUserService{
		updateAvatarFunc: func(_ context.Context, _ uint, _ string) (*models.User, error) {
			t.Error("profile must not be updated for an oversized upload")
			return nil, nil
		},
	}
	router := newUploadTestRouter(storageSvc, userSvc, config.StorageConfig{MaxFileSizeMB: 1})

	// 2 MB payload against a 1 MB limit.
	req := multipartAvatarRequest(t, 1, bytes.Repeat([]byte("a"), 2<<20))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d (body: %s)", rec.Code, http.StatusRequestEntityTooLarge, rec.Body.String())
	}
}

func TestUploadAvatarHandlerMissingFile(t *testing.T) {
	router := newUploadTestRouter(&stubStorageService{}, &stubUserService{}, config.StorageConfig{MaxFileSizeMB: 10})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	token, err := auth.GenerateToken(1, "tester", auth.TokenTypeAccess, time.Minute, testHandlerAuthCfg)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d (body: %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}
