package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/services/faces"
	"firewatch-backend/internal/services/gateway"
)

// FaceRegistry enrolls and identifies employees by face
type FaceRegistry interface {
	Register(ctx context.Context, name, email string, image []byte, fileName string) (*faces.RegistrationResult, error)
	Identify(ctx context.Context, image []byte, fileName string) (*models.FaceMatch, error)
}

// FacesHandler exposes face registration and identification
type FacesHandler struct {
	faces FaceRegistry
}

func NewFacesHandler(registry FaceRegistry) *FacesHandler {
	return &FacesHandler{faces: registry}
}

// RegisterResponse confirms an enrollment
type RegisterResponse struct {
	Success      bool             `json:"success" example:"true"`
	FaceCaptured bool             `json:"face_captured" example:"true"`
	Confidence   float64          `json:"confidence,omitempty" example:"0.97"`
	Data         *models.Employee `json:"data"`
}

// IdentifyResponse carries the best identity match, if any
type IdentifyResponse struct {
	Success bool              `json:"success" example:"true"`
	Matched bool              `json:"matched" example:"true"`
	Data    *models.FaceMatch `json:"data,omitempty"`
}

// @Summary Register an employee face
// @Description Enroll an employee from a photo. When the face service is unavailable the employee is stored without an embedding.
// @Tags faces
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Employee name"
// @Param email formData string false "Employee email"
// @Param image formData file true "Face photo"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /faces/register [post]
func (h *FacesHandler) Register(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, errorBody("name is required"))
		return
	}

	image, fileName, ok := h.readImage(c)
	if !ok {
		return
	}

	result, err := h.faces.Register(c.Request.Context(), name, c.PostForm("email"), image, fileName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Success:      true,
		FaceCaptured: result.FaceCaptured,
		Confidence:   result.Confidence,
		Data:         result.Employee,
	})
}

// @Summary Identify a face
// @Description Match a photo against registered employees. Returns matched=false when nobody qualifies.
// @Tags faces
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Face photo"
// @Success 200 {object} IdentifyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /faces/identify [post]
func (h *FacesHandler) Identify(c *gin.Context) {
	image, fileName, ok := h.readImage(c)
	if !ok {
		return
	}

	match, err := h.faces.Identify(c.Request.Context(), image, fileName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, IdentifyResponse{Success: true, Matched: match != nil, Data: match})
}

func (h *FacesHandler) readImage(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("image file is required"))
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("cannot read image file"))
		return nil, "", false
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("cannot read image file"))
		return nil, "", false
	}
	return image, fileHeader.Filename, true
}

func (h *FacesHandler) writeError(c *gin.Context, err error) {
	var duplicate *faces.DuplicateFaceError
	switch {
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{
			"success":      false,
			"error":        "face already registered",
			"duplicate_of": duplicate.Match.EmployeeID,
			"similarity":   duplicate.Match.Similarity,
		})
	case errors.Is(err, faces.ErrNoFaceDetected):
		c.JSON(http.StatusUnprocessableEntity, errorBody("no face detected in image"))
	case gateway.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, errorBody("face service unavailable, please try again later"))
	default:
		c.JSON(http.StatusInternalServerError, errorBody("face operation failed"))
	}
}
