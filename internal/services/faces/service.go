package faces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/services/gateway"
)

// Detector is the gateway surface used to extract face embeddings
type Detector interface {
	CallMultipart(ctx context.Context, service, endpoint, fileField, fileName string, fileData []byte, fields map[string]string) (*gateway.Response, error)
}

// Matcher compares embeddings against the registered identity cache
type Matcher interface {
	Identify(embedding []float64) *models.FaceMatch
	FindDuplicate(embedding []float64) *models.FaceMatch
	Refresh(ctx context.Context) error
}

// EmployeeStore persists registered employees
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
}

// ErrNoFaceDetected means the detection service found no usable face in the
// submitted image
var ErrNoFaceDetected = errors.New("no face detected in image")

// DuplicateFaceError blocks registering a face that already belongs to
// another employee
type DuplicateFaceError struct {
	Match *models.FaceMatch
}

func (e *DuplicateFaceError) Error() string {
	return fmt.Sprintf("face already registered to employee %d (%s), similarity %.2f",
		e.Match.EmployeeID, e.Match.Name, e.Match.Similarity)
}

// detectFaceResponse is the wire shape of the face service's /detect-face reply
type detectFaceResponse struct {
	Success     bool                `json:"success"`
	Embedding   []float64           `json:"embedding"`
	Confidence  float64             `json:"confidence"`
	BoundingBox *models.BoundingBox `json:"bounding_box"`
}

// RegistrationResult reports how a registration went, including whether the
// face embedding could be captured
type RegistrationResult struct {
	Employee     *models.Employee `json:"employee"`
	FaceCaptured bool             `json:"face_captured"`
	Confidence   float64          `json:"confidence,omitempty"`
}

// Service handles employee registration and face identification. Registration
// degrades gracefully: when the face service is unavailable the employee is
// stored without an embedding and can be re-enrolled later.
type Service struct {
	detector Detector
	matcher  Matcher
	store    EmployeeStore
}

func NewService(detector Detector, matcher Matcher, store EmployeeStore) *Service {
	return &Service{
		detector: detector,
		matcher:  matcher,
		store:    store,
	}
}

// Register enrolls a new employee. The submitted photo goes through the face
// service for embedding extraction and the result is checked against already
// registered faces before the employee is stored.
func (s *Service) Register(ctx context.Context, name, email string, image []byte, fileName string) (*RegistrationResult, error) {
	employee := &models.Employee{Name: name, Email: email}
	result := &RegistrationResult{Employee: employee}

	detection, err := s.detectFace(ctx, image, fileName)
	switch {
	case err == nil:
		if duplicate := s.matcher.FindDuplicate(detection.Embedding); duplicate != nil {
			log.Warn().
				Str("name", name).
				Int64("duplicate_of", duplicate.EmployeeID).
				Float64("similarity", duplicate.Similarity).
				Msg("Registration blocked: face already enrolled")
			return nil, &DuplicateFaceError{Match: duplicate}
		}
		employee.Embedding = detection.Embedding
		result.FaceCaptured = true
		result.Confidence = detection.Confidence
	case gateway.IsUnavailable(err):
		// Face service down: store the employee without an embedding
		// rather than refusing enrollment outright
		log.Warn().Err(err).Str("name", name).Msg("Face service unavailable, registering without embedding")
	default:
		return nil, err
	}

	if err := s.store.CreateEmployee(ctx, employee); err != nil {
		return nil, err
	}

	log.Info().
		Int64("employee_id", employee.ID).
		Str("name", name).
		Bool("face_captured", result.FaceCaptured).
		Msg("Employee registered")

	if result.FaceCaptured {
		if err := s.matcher.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("Embedding cache refresh after registration failed")
		}
	}
	return result, nil
}

// Identify extracts the embedding from a photo and matches it against
// registered employees. Returns nil when nobody matches.
func (s *Service) Identify(ctx context.Context, image []byte, fileName string) (*models.FaceMatch, error) {
	detection, err := s.detectFace(ctx, image, fileName)
	if err != nil {
		return nil, err
	}
	return s.matcher.Identify(detection.Embedding), nil
}

func (s *Service) detectFace(ctx context.Context, image []byte, fileName string) (*detectFaceResponse, error) {
	resp, err := s.detector.CallMultipart(ctx, gateway.ServiceFace, "/detect-face", "image", fileName, image, nil)
	if err != nil {
		var clientErr *gateway.ClientError
		if errors.As(err, &clientErr) {
			// The face service answers 4xx for images without a face
			return nil, ErrNoFaceDetected
		}
		return nil, err
	}

	var detection detectFaceResponse
	if err := json.Unmarshal(resp.Body, &detection); err != nil {
		return nil, fmt.Errorf("decode face detection response: %w", err)
	}
	if !detection.Success || len(detection.Embedding) == 0 {
		return nil, ErrNoFaceDetected
	}
	return &detection, nil
}
