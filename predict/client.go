// Package predict implements the synchronous HTTP client for the external
// pest classification service. One prediction is one multipart POST of the
// stored image; there is no retry, circuit breaking, or response caching.
package predict

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/user/pestguard-go/apperror"
)

// Result is a parsed prediction response. Confidence is the raw service
// value in [0,1].
type Result struct {
	Label      string
	Confidence float64
}

// Percent returns the confidence rescaled to a percentage and rounded to
// two decimal places, the form shown to users and stored in history.
func (r Result) Percent() float64 {
	return math.Round(r.Confidence*10000) / 100
}

// response mirrors the service's JSON body. Absent fields keep their zero
// values, which map to the documented defaults.
type response struct {
	Prediction *string  `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

// Client calls the prediction service.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint. The timeout bounds the
// whole round trip, including the service's cold-start latency.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict uploads the stored image at imagePath and returns the parsed
// label and confidence. A missing prediction field defaults to "Unknown";
// a missing confidence defaults to 0. Non-200 responses surface as
// "ML Service Error" and transport failures as "Prediction API Error";
// the underlying cause stays in the wrapped error for logging, never in
// the user-facing message.
func (c *Client) Predict(ctx context.Context, imagePath string) (Result, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return Result{}, apperror.NewInternalError("failed to open stored image", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(imagePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, pr)
	if err != nil {
		return Result{}, apperror.NewExternalServiceError("Prediction API Error", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, apperror.NewExternalServiceError("Prediction API Error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, apperror.NewExternalServiceError("ML Service Error", nil)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, apperror.NewExternalServiceError("Prediction API Error", err)
	}

	result := Result{Label: "Unknown"}
	if body.Prediction != nil {
		result.Label = *body.Prediction
	}
	if body.Confidence != nil {
		result.Confidence = *body.Confidence
	}
	return result, nil
}
