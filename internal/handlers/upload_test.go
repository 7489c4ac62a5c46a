package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talent-chat/internal/upload"
)

func setupUploadRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store, err := upload.NewStore(zap.NewNop().Sugar(), t.TempDir())
	require.NoError(t, err)
	handler := NewUploadHandler(upload.NewSigner("test-secret"), store, "chat-media", "http://localhost:8083")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload/signed-url", handler.CreateSignedURL)
	r.PUT("/upload/*storage_path", handler.ReceiveUpload)
	r.POST("/upload/complete", handler.CompleteUpload)
	return r
}

func requestSignedURL(t *testing.T, router *gin.Engine, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/upload/signed-url", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestUploadTwoPhaseFlow(t *testing.T) {
	router := setupUploadRouter(t)

	payload := "fake jpeg bytes"
	resp := requestSignedURL(t, router, `{"file_name":"selfie.jpg","file_type":"image/jpeg","file_size":15}`)

	signedURL, _ := resp["signed_url"].(string)
	storagePath, _ := resp["storage_path"].(string)
	require.NotEmpty(t, signedURL)
	assert.True(t, strings.HasSuffix(storagePath, ".jpg"))
	assert.Equal(t, "chat-media", resp["bucket"])

	put := httptest.NewRequest(http.MethodPut, signedURL, strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, put)
	require.Equal(t, http.StatusOK, rec.Code)

	complete := httptest.NewRequest(http.MethodPost, "/upload/complete", bytes.NewBufferString(`{"storage_path":"`+storagePath+`","bucket":"chat-media"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, complete)
	require.Equal(t, http.StatusOK, rec.Code)

	var done map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&done))
	assert.Equal(t, "http://localhost:8083/media/"+storagePath, done["url"])
}

func TestUploadRejectsUnsignedTransfer(t *testing.T) {
	router := setupUploadRouter(t)

	put := httptest.NewRequest(http.MethodPut, "/upload/sneaky.jpg?exp=9999999999&size=5&type=image%2Fjpeg&sig=bogus", strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, put)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	router := setupUploadRouter(t)

	resp := requestSignedURL(t, router, `{"file_name":"clip.mp4","file_type":"video/mp4","file_size":5}`)
	signedURL, _ := resp["signed_url"].(string)

	put := httptest.NewRequest(http.MethodPut, signedURL, strings.NewReader("more than five bytes"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, put)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCreateSignedURLValidation(t *testing.T) {
	router := setupUploadRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"zero size", `{"file_name":"a.jpg","file_type":"image/jpeg","file_size":0}`},
		{"over cap", `{"file_name":"a.jpg","file_type":"image/jpeg","file_size":26214401}`},
		{"bad type", `{"file_name":"a.exe","file_type":"application/octet-stream","file_size":10}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload/signed-url", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCompleteUploadMissingObject(t *testing.T) {
	router := setupUploadRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload/complete", bytes.NewBufferString(`{"storage_path":"ghost.jpg"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
