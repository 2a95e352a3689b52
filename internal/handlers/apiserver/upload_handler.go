package apiserver

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"match-go/internal/config"
	"match-go/internal/matchtypes"
	"match-go/internal/middleware"
	"match-go/internal/services"
)

const defaultMaxMemory = 8 << 20 // 8 MB max in-memory part of a multipart form

// UploadHandler handles avatar uploads for the authenticated user.
type UploadHandler struct {
	storageService matchtypes.StorageService
	userService    services.UserService
	cfg            config.StorageConfig
}

// NewUploadHandler creates a new UploadHandler instance.
func NewUploadHandler(storageService matchtypes.StorageService, userService services.UserService, cfg config.StorageConfig) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		userService:    userService,
		cfg:            cfg,
	}
}

// UploadAvatarHandler handles POST /api/v1/users/me/avatar. It stores the
// uploaded file and points the caller's profile at it.
func (h *UploadHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unable to resolve caller identity", http.StatusUnauthorized)
		return
	}

	maxUploadSize := h.cfg.MaxFileSizeMB << 20
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxMemory
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSONError(w, fmt.Sprintf("file too large, limit is %d MB", maxUploadSize>>20), http.StatusRequestEntityTooLarge)
		} else {
			writeJSONError(w, fmt.Sprintf("failed to parse form: %v", err), http.StatusBadRequest)
		}
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			writeJSONError(w, "missing 'file' field in request", http.StatusBadRequest)
		} else {
			writeJSONError(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	if handler.Size > maxUploadSize {
		writeJSONError(w, fmt.Sprintf("file too large, limit is %d MB", maxUploadSize>>20), http.StatusRequestEntityTooLarge)
		return
	}

	mimeType := handler.Header.Get("Content-Type")
	fileInfo, err := h.storageService.UploadFile(r.Context(), file, handler.Size, handler.Filename, mimeType)
	if err != nil {
		log.Printf("Failed to store avatar for user %d: %v", userID, err)
		writeJSONError(w, "failed to store file", http.StatusInternalServerError)
		return
	}

	if _, err := h.userService.UpdateAvatar(r.Context(), userID, fileInfo.URL); err != nil {
		log.Printf("Failed to update avatar URL for user %d: %v", userID, err)
		writeJSONError(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, fileInfo)
}
