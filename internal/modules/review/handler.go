package review

import (
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/codelens/core/internal/middleware"
	"github.com/codelens/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/review")

	g.POST("/guest-upload", h.uploadGuest)

	a := g.Group("", authMW)
	a.POST("/upload", h.upload)
	a.GET("/history", h.history)
	a.GET("/:id", h.getByID)
}

// POST /review/upload
//
// Validate → read → classify → analyze (fallback on provider failure) →
// persist → respond. Validation happens before any external call; only a
// persistence failure aborts an otherwise-successful analysis.
func (h *Handler) upload(c *gin.Context) {
	code, filename, ok := h.acceptSubmission(c)
	if !ok {
		return
	}

	language := classifyLanguage(filename)
	result := h.svc.Analyze(c.Request.Context(), code, filename, language)

	userID := middleware.CurrentUserID(c)
	r, err := h.svc.Create(&userID, filename, language, code, result)
	if err != nil {
		response.InternalError(c, "failed to process code upload")
		return
	}

	response.Created(c, gin.H{
		"message": "code analyzed successfully",
		"review":  toReviewResponse(r),
	})
}

// POST /review/guest-upload
//
// Same pipeline without owner association or persistence: the computed
// result is returned directly and is never retrievable afterwards.
func (h *Handler) uploadGuest(c *gin.Context) {
	code, filename, ok := h.acceptSubmission(c)
	if !ok {
		return
	}

	language := classifyLanguage(filename)
	result := h.svc.Analyze(c.Request.Context(), code, filename, language)

	response.OK(c, gin.H{
		"review": toGuestResponse(filename, language, result),
	})
}

// GET /review/history
func (h *Handler) history(c *gin.Context) {
	items, err := h.svc.ListByUser(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, "failed to fetch review history")
		return
	}

	out := make([]reviewSummary, len(items))
	for i := range items {
		out[i] = toReviewSummary(&items[i])
	}
	response.OK(c, gin.H{"reviews": out})
}

// GET /review/:id
func (h *Handler) getByID(c *gin.Context) {
	r, err := h.svc.GetByID(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, "failed to fetch review")
		return
	}
	if r == nil {
		response.NotFoundMsg(c, "review not found")
		return
	}
	response.OK(c, gin.H{"review": toReviewResponse(r)})
}

// acceptSubmission validates and reads the uploaded file. On failure it
// writes the error response and returns ok=false. The transient upload is
// released as soon as it has been read.
func (h *Handler) acceptSubmission(c *gin.Context) (code, filename string, ok bool) {
	fileHeader, err := c.FormFile(uploadFieldName)
	if err != nil {
		response.BadRequest(c, "no file uploaded")
		return "", "", false
	}

	if err := validateSubmission(fileHeader.Filename, fileHeader.Size); err != nil {
		response.BadRequest(c, err.Error())
		return "", "", false
	}

	content, err := readSubmission(fileHeader)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			response.BadRequest(c, err.Error())
		} else {
			response.InternalError(c, "failed to read uploaded file")
		}
		return "", "", false
	}
	return content, fileHeader.Filename, true
}

// validateSubmission enforces the extension allow-list (case-insensitive)
// and the size cap before any external call is made.
func validateSubmission(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, allowed := allowedExtensions[ext]; !allowed {
		return errInvalidExtension
	}
	if size > maxUploadBytes {
		return errFileTooLarge
	}
	return nil
}

// readSubmission loads the file content as text. The size declared by the
// client is re-checked against the bytes actually read.
func readSubmission(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return "", err
	}
	if len(payload) > maxUploadBytes {
		return "", errFileTooLarge
	}
	return string(payload), nil
}
