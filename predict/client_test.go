package predict

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/pestguard-go/apperror"
)

func writeTempImage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaf.png")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPercentRounding(t *testing.T) {
	tests := []struct {
		confidence float64
		want       float64
	}{
		{0.934567, 93.46},
		{0.5, 50},
		{0, 0},
		{1, 100},
		{0.12344, 12.34},
		{0.12345, 12.35},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result{Confidence: tt.confidence}.Percent())
	}
}

func TestPredictSuccess(t *testing.T) {
	imagePath := writeTempImage(t, "fake png bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "leaf.png", header.Filename)

		buf, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake png bytes", string(buf))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prediction": "Aphids", "confidence": 0.934567}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Predict(context.Background(), imagePath)
	require.NoError(t, err)

	assert.Equal(t, "Aphids", result.Label)
	assert.Equal(t, 0.934567, result.Confidence)
	assert.Equal(t, 93.46, result.Percent())
}

func TestPredictDefaultsForMissingFields(t *testing.T) {
	imagePath := writeTempImage(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Predict(context.Background(), imagePath)
	require.NoError(t, err)

	assert.Equal(t, "Unknown", result.Label)
	assert.Equal(t, float64(0), result.Confidence)
	assert.Equal(t, float64(0), result.Percent())
}

func TestPredictNon200IsServiceError(t *testing.T) {
	imagePath := writeTempImage(t, "x")

	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewClient(srv.URL, 5*time.Second)
		_, err := client.Predict(context.Background(), imagePath)
		srv.Close()

		require.Error(t, err)
		assert.True(t, apperror.IsExternalServiceError(err))
		appErr, _ := apperror.FromError(err)
		assert.Equal(t, "ML Service Error", appErr.Message)
	}
}

func TestPredictMalformedJSON(t *testing.T) {
	imagePath := writeTempImage(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Predict(context.Background(), imagePath)
	require.Error(t, err)

	appErr, _ := apperror.FromError(err)
	assert.Equal(t, "Prediction API Error", appErr.Message)
}

func TestPredictTransportFailure(t *testing.T) {
	imagePath := writeTempImage(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, time.Second)
	_, err := client.Predict(context.Background(), imagePath)
	require.Error(t, err)

	assert.True(t, apperror.IsExternalServiceError(err))
	appErr, _ := apperror.FromError(err)
	// The user-facing message carries no transport detail.
	assert.Equal(t, "Prediction API Error", appErr.Message)
	assert.NotNil(t, appErr.Err)
}

func TestPredictMissingImageFile(t *testing.T) {
	client := NewClient("http://localhost:0", time.Second)
	_, err := client.Predict(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.False(t, apperror.IsExternalServiceError(err))
}

func TestPredictHonorsContextCancellation(t *testing.T) {
	imagePath := writeTempImage(t, "x")

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(srv.URL, time.Minute)
	_, err := client.Predict(ctx, imagePath)
	require.Error(t, err)
	assert.True(t, apperror.IsExternalServiceError(err))
}
