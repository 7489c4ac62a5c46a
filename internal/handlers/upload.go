package handlers

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talent-chat/internal/upload"
)

// MaxUploadBytes caps a single media upload. The JSON API never carries raw
// media; payloads go through the signed-URL transfer instead.
const MaxUploadBytes = 25 << 20

const signedURLTTL = 15 * time.Minute

// UploadHandler implements the two-phase upload protocol: authorize a
// signed PUT URL, transfer raw bytes, then confirm completion.
type UploadHandler struct {
	signer *upload.Signer
	store  *upload.Store
	bucket string
	base   string
}

// NewUploadHandler builds an UploadHandler. base is the public URL prefix
// media is served under.
func NewUploadHandler(signer *upload.Signer, store *upload.Store, bucket, base string) *UploadHandler {
	return &UploadHandler{signer: signer, store: store, bucket: bucket, base: strings.TrimRight(base, "/")}
}

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
	"video/webm": true,
	"audio/mpeg": true,
	"audio/mp4":  true,
}

// CreateSignedURL authorizes one upload and returns the PUT URL.
func (h *UploadHandler) CreateSignedURL(c *gin.Context) {
	var req struct {
		FileName string `json:"file_name" binding:"required"`
		FileType string `json:"file_type" binding:"required"`
		FileSize int64  `json:"file_size" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FileSize <= 0 || req.FileSize > MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size out of range"})
		return
	}
	if !allowedMediaTypes[req.FileType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}

	ext := path.Ext(req.FileName)
	storagePath := uuid.NewString() + ext

	c.JSON(http.StatusOK, gin.H{
		"signed_url":   h.signer.SignedURL(storagePath, req.FileSize, req.FileType, signedURLTTL),
		"storage_path": storagePath,
		"bucket":       h.bucket,
		"upload_meta": gin.H{
			"expires_at": time.Now().Add(signedURLTTL).UTC().Format(time.RFC3339),
			"max_bytes":  req.FileSize,
		},
	})
}

// ReceiveUpload accepts the raw bytes of a previously authorized upload.
func (h *UploadHandler) ReceiveUpload(c *gin.Context) {
	storagePath := strings.TrimPrefix(c.Param("storage_path"), "/")

	expiresAt, err := strconv.ParseInt(c.Query("exp"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiry"})
		return
	}
	size, err := strconv.ParseInt(c.Query("size"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return
	}
	contentType := c.Query("type")

	if err := h.signer.Verify(storagePath, size, contentType, expiresAt, c.Query("sig")); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, upload.ErrSignatureExpired) {
			status = http.StatusGone
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	written, err := h.store.Save(storagePath, c.Request.Body, size)
	if err != nil {
		if errors.Is(err, upload.ErrTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds authorized size"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bytes": written})
}

// CompleteUpload verifies the transfer landed and returns the public URL to
// reference from a message.
func (h *UploadHandler) CompleteUpload(c *gin.Context) {
	var req struct {
		StoragePath string `json:"storage_path" binding:"required"`
		Bucket      string `json:"bucket"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.Stat(req.StoragePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": h.base + "/media/" + req.StoragePath})
}
