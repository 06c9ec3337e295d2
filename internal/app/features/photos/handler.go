// internal/app/features/photos/handler.go
package photos

// Photo uploads for holder portraits, company logos, and product images.
// Files land under the local upload dir with a generated name
// (photos/YYYY/MM/<uuid>.<ext>) and are served by the static file
// handler mounted at URLPrefix.

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxUploadBytes caps photo uploads at 5 MB.
const maxUploadBytes = 5 << 20

var allowedExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type Handler struct {
	Dir       string // local directory uploads are written to
	URLPrefix string // public URL prefix the file handler serves from
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
}

func NewHandler(dir, urlPrefix string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Dir:       dir,
		URLPrefix: strings.TrimRight(urlPrefix, "/"),
		Log:       logger,
		ErrLog:    errLog,
	}
}

type uploadResponse struct {
	URL  string `json:"url"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// HandleUpload handles POST /api/photos with a multipart "file" field.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Upload too large or malformed (5 MB max).")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "read multipart file failed", err, "A file field named 'file' is required.")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExts[ext]; !ok {
		uierrors.Fail(w, http.StatusBadRequest, "Only jpg, png, and webp images are accepted.")
		return
	}

	// Generate unique path: photos/YYYY/MM/uuid.ext
	now := time.Now().UTC()
	relDir := fmt.Sprintf("photos/%04d/%02d", now.Year(), now.Month())
	name := fmt.Sprintf("%s%s", uuid.New().String()[:8], ext)
	relPath := filepath.ToSlash(filepath.Join(relDir, name))

	destDir := filepath.Join(h.Dir, relDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		h.ErrLog.LogServerError(w, r, "create upload dir failed", err, "A server error occurred.")
		return
	}

	dest, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create upload file failed", err, "A server error occurred.")
		return
	}
	defer dest.Close()

	size, err := io.Copy(dest, file)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "write upload failed", err, "A server error occurred.")
		return
	}

	h.Log.Info("photo uploaded",
		zap.String("path", relPath),
		zap.Int64("size", size))

	uierrors.Created(w, uploadResponse{
		URL:  h.URLPrefix + "/" + relPath,
		Path: relPath,
		Size: size,
	})
}
