// Package detection implements the prediction flow: forward a stored leaf
// image to the classification service, append the outcome to the per-user
// history log, and attach remediation text from the pest knowledge table.
package detection

import (
	"context"

	"github.com/user/pestguard-go/apperror"
	"github.com/user/pestguard-go/predict"
)

// placeholder is rendered for remediation fields when the predicted label
// has no knowledge-table row, so an unrecognized pest never blocks the
// result page.
const placeholder = "N/A"

// Predictor is the external classification collaborator.
type Predictor interface {
	Predict(ctx context.Context, imagePath string) (predict.Result, error)
}

// Detection is the rendered outcome of one prediction.
type Detection struct {
	Pest       string
	Confidence float64
	Reason     string
	Solution   string
	Prevention string
	Image      string
}

// Service runs the prediction flow.
type Service struct {
	repo      Repository
	predictor Predictor
}

// NewService creates a detection Service.
func NewService(repo Repository, predictor Predictor) *Service {
	return &Service{repo: repo, predictor: predictor}
}

// Detect classifies the stored image for username, records exactly one
// history row, and resolves remediation text. storedName is the filename
// in the upload store; imagePath is its on-disk path. The history insert
// and the knowledge read are independent pool operations; pest info is
// read-only reference data, so no transaction ties them together.
func (s *Service) Detect(ctx context.Context, username, storedName, imagePath string) (*Detection, error) {
	result, err := s.predictor.Predict(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	confidence := result.Percent()
	record := &HistoryRecord{
		Username:   username,
		Image:      storedName,
		Pest:       result.Label,
		Confidence: confidence,
	}
	if _, err := s.repo.InsertHistory(ctx, record); err != nil {
		return nil, err
	}

	detection := &Detection{
		Pest:       result.Label,
		Confidence: confidence,
		Reason:     placeholder,
		Solution:   placeholder,
		Prevention: placeholder,
		Image:      storedName,
	}

	info, err := s.repo.GetPestInfo(ctx, result.Label)
	switch {
	case err == nil:
		detection.Reason = info.Reason
		detection.Solution = info.Solution
		detection.Prevention = info.Prevention
	case apperror.IsNotFound(err):
		// Unknown label: keep the placeholders.
	default:
		return nil, err
	}

	return detection, nil
}

// History returns the user's past predictions, newest first. A user with
// no predictions gets an empty slice.
func (s *Service) History(ctx context.Context, username string) ([]HistoryRecord, error) {
	return s.repo.ListHistory(ctx, username)
}
