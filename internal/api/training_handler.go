package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/service"
)

type TrainingHandler struct {
	trainingService service.TrainingService
	metrics         *Metrics
	logger          *zap.Logger
}

func NewTrainingHandler(trainingService service.TrainingService, metrics *Metrics, logger *zap.Logger) *TrainingHandler {
	return &TrainingHandler{
		trainingService: trainingService,
		metrics:         metrics,
		logger:          logger,
	}
}

// --- DTOs ---

type NewItemRequest struct {
	SourceRef      string `json:"sourceRef" binding:"required"`
	IsExternalLink bool   `json:"isExternalLink"`
	DisplayName    string `json:"displayName"`
}

type CreateTrainingDocumentRequest struct {
	Name         string           `json:"name" binding:"required"`
	DocumentType string           `json:"documentType"`
	Priority     domain.Priority  `json:"priority"`
	Description  string           `json:"description"`
	ParalegalIDs []string         `json:"paralegalIds"`
	Files        []NewItemRequest `json:"files" binding:"dive"`
	Videos       []NewItemRequest `json:"videos" binding:"dive"`
}

type UploadURLRequest struct {
	Kind        string `json:"kind" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type PostBodyRequest struct {
	Body string `json:"body"`
}

type FileAccessRequest struct {
	FileRef string `json:"fileRef" binding:"required"`
}

type FileAccessResponse struct {
	URL string `json:"url"`
}

type ProgressRequest struct {
	PercentComplete *int `json:"percentComplete" binding:"required"`
}

// --- Attorney ---

// ListAttorneyDocuments godoc
// @Summary List the attorney's training documents with progress and discussions
// @Tags Attorney
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.TrainingAssignment
// @Router /attorney/training-documents [get]
func (h *TrainingHandler) ListAttorneyDocuments(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	list, err := h.trainingService.ListAssignedTrainingDocuments(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err, "list training documents")
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateTrainingDocument godoc
// @Summary Create a training document and assign it to paralegals
// @Tags Attorney
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param document body CreateTrainingDocumentRequest true "Training document"
// @Success 201 {object} domain.TrainingAssignment
// @Router /attorney/training-documents [post]
func (h *TrainingHandler) CreateTrainingDocument(c *gin.Context) {
	var req CreateTrainingDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	paralegalIDs := make([]primitive.ObjectID, 0, len(req.ParalegalIDs))
	for _, hex := range req.ParalegalIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid paralegal ID format: "+hex)
			return
		}
		paralegalIDs = append(paralegalIDs, id)
	}

	created, err := h.trainingService.CreateTrainingDocument(c.Request.Context(), caller.ID, service.CreateTrainingDocumentInput{
		Name:         req.Name,
		DocumentType: req.DocumentType,
		Priority:     req.Priority,
		Description:  req.Description,
		ParalegalIDs: paralegalIDs,
		Files:        mapNewItems(req.Files),
		Videos:       mapNewItems(req.Videos),
	})
	if err != nil {
		h.respondError(c, err, "create training document")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// RequestUploadURL godoc
// @Summary Get a presigned URL for uploading a training file or video
// @Tags Attorney
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param upload body UploadURLRequest true "Upload details"
// @Success 200 {object} UploadURLResponse
// @Router /attorney/uploads/url [post]
func (h *TrainingHandler) RequestUploadURL(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	kind, ok := domain.ParseItemKind(req.Kind)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Item kind must be 'files' or 'videos'")
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	up, err := h.trainingService.RequestUploadURL(c.Request.Context(), caller.ID, kind, req.FileName, req.ContentType)
	if err != nil {
		h.respondError(c, err, "issue upload URL")
		return
	}
	c.JSON(http.StatusOK, UploadURLResponse{UploadURL: up.URL, ObjectKey: up.ObjectKey})
}

// --- Shared ---

// PostComment godoc
// @Summary Add a comment to a file or video
// @Tags Discussion
// @Accept json
// @Security BearerAuth
// @Param id path string true "Training document ID"
// @Param kind path string true "files or videos"
// @Param itemId path string true "Item ID"
// @Param comment body PostBodyRequest true "Comment"
// @Success 201 {object} gin.H
// @Router /training-documents/{id}/{kind}/{itemId}/comments [post]
func (h *TrainingHandler) PostComment(c *gin.Context) {
	docID, kind, itemID, ok := itemPath(c)
	if !ok {
		return
	}
	var req PostBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	if err := h.trainingService.PostComment(c.Request.Context(), caller, docID, kind, itemID, req.Body); err != nil {
		h.respondError(c, err, "post comment")
		return
	}
	h.metrics.discussionPosted("comment", kind.PathSegment())
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added"})
}

// PostReply godoc
// @Summary Reply to a comment
// @Tags Discussion
// @Accept json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Param reply body PostBodyRequest true "Reply"
// @Success 201 {object} gin.H
// @Router /training-documents/{id}/{kind}/{itemId}/comments/{commentId}/replies [post]
func (h *TrainingHandler) PostReply(c *gin.Context) {
	docID, kind, itemID, ok := itemPath(c)
	if !ok {
		return
	}
	commentID, ok := objectIDParam(c, "commentId")
	if !ok {
		return
	}
	var req PostBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	if err := h.trainingService.PostReply(c.Request.Context(), caller, docID, kind, itemID, commentID, req.Body); err != nil {
		h.respondError(c, err, "post reply")
		return
	}
	h.metrics.discussionPosted("reply", kind.PathSegment())
	c.JSON(http.StatusCreated, gin.H{"message": "Reply added"})
}

// ResolveFileAccessURL godoc
// @Summary Exchange a stored file reference for a short-lived URL
// @Tags Files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param file body FileAccessRequest true "File reference"
// @Success 200 {object} FileAccessResponse
// @Router /files/access-url [post]
func (h *TrainingHandler) ResolveFileAccessURL(c *gin.Context) {
	var req FileAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	url, err := h.trainingService.ResolveFileAccessURL(c.Request.Context(), caller, req.FileRef)
	if err != nil {
		h.respondError(c, err, "resolve file access URL")
		return
	}
	h.metrics.fileAccessIssued()
	c.JSON(http.StatusOK, FileAccessResponse{URL: url})
}

// --- Paralegal ---

// ListParalegalDocuments godoc
// @Summary List the training documents assigned to the paralegal
// @Tags Paralegal
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.TrainingAssignment
// @Router /paralegal/training-documents [get]
func (h *TrainingHandler) ListParalegalDocuments(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	list, err := h.trainingService.ListForParalegal(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err, "list assigned training documents")
		return
	}
	c.JSON(http.StatusOK, list)
}

// RecordProgress godoc
// @Summary Record the paralegal's progress on a file or video
// @Tags Paralegal
// @Accept json
// @Security BearerAuth
// @Param progress body ProgressRequest true "Percent complete"
// @Success 204
// @Router /paralegal/training-documents/{id}/{kind}/{itemId}/progress [put]
func (h *TrainingHandler) RecordProgress(c *gin.Context) {
	docID, kind, itemID, ok := itemPath(c)
	if !ok {
		return
	}
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	err := h.trainingService.RecordProgress(c.Request.Context(), caller.ID, docID, kind, itemID, *req.PercentComplete)
	if err != nil {
		h.respondError(c, err, "record progress")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Helpers ---

func itemPath(c *gin.Context) (docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID, ok bool) {
	if docID, ok = objectIDParam(c, "id"); !ok {
		return
	}
	if kind, ok = kindParam(c); !ok {
		return
	}
	itemID, ok = objectIDParam(c, "itemId")
	return
}

// respondError maps service errors to HTTP status codes.
func (h *TrainingHandler) respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrTrainingDocumentNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrFileNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmptyBody),
		errors.Is(err, service.ErrInvalidPercent),
		errors.Is(err, service.ErrInvalidTrainingDocument),
		errors.Is(err, service.ErrInvalidParalegal):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", zap.String("action", action), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
	}
}

func mapNewItems(in []NewItemRequest) []service.NewItemInput {
	out := make([]service.NewItemInput, len(in))
	for i, it := range in {
		out[i] = service.NewItemInput{
			SourceRef:      it.SourceRef,
			IsExternalLink: it.IsExternalLink,
			DisplayName:    it.DisplayName,
		}
	}
	return out
}
