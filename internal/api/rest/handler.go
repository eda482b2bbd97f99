package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/shelftunes/st-requests/internal/api/middleware"
	"github.com/shelftunes/st-requests/internal/api/rest/dto"
	"github.com/shelftunes/st-requests/internal/approval"
	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/queue"
	"github.com/shelftunes/st-requests/internal/store"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// SubmitRequest enqueues a new media request for the authenticated user
	// POST /api/v1/requests
	SubmitRequest(c *gin.Context)

	// ListRequests lists requests by status in submission order
	// GET /api/v1/requests?status=<status>&limit=<limit>&offset=<offset>
	ListRequests(c *gin.Context)

	// GetRequest retrieves a single request by ID
	// GET /api/v1/requests/:id
	GetRequest(c *gin.Context)

	// ApproveRequest moves a pending request into the fulfillment pipeline
	// POST /api/v1/requests/:id/approve
	ApproveRequest(c *gin.Context)

	// RejectRequest declines a pending request (terminal)
	// POST /api/v1/requests/:id/reject
	RejectRequest(c *gin.Context)

	// FailRequest force-fails an approved request (admin escape hatch)
	// POST /api/v1/requests/:id/fail
	FailRequest(c *gin.Context)

	// ListCatalog lists fulfilled catalog entries
	// GET /api/v1/catalog?media_type=<media_type>&limit=<limit>&offset=<offset>
	ListCatalog(c *gin.Context)

	// ListBlacklist lists blacklisted sources (admin)
	// GET /api/v1/blacklist
	ListBlacklist(c *gin.Context)

	// RemoveBlacklistedSource removes a source from the blacklist (admin)
	// DELETE /api/v1/blacklist/:source
	RemoveBlacklistedSource(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	queue    *queue.Service
	approval *approval.Service
	store    store.Store
}

// NewHandler creates a new REST API handler
func NewHandler(queueSvc *queue.Service, approvalSvc *approval.Service, st store.Store) Handler {
	return &handler{
		queue:    queueSvc,
		approval: approvalSvc,
		store:    st,
	}
}

// SubmitRequest enqueues a new media request for the authenticated user
func (h *handler) SubmitRequest(c *gin.Context) {
	requesterID := middleware.AuthSubject(c)
	if requesterID == "" {
		respondUnauthorized(c, "A user identity is required to submit requests")
		return
	}

	var body dto.SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	request, err := h.queue.Submit(c.Request.Context(), queue.SubmitParams{
		RequesterID: requesterID,
		MediaType:   domain.MediaType(body.MediaType),
		ExternalID:  domain.ExternalID(body.ExternalID),
		CoverRef:    body.CoverRef,
		Payload:     datatypes.JSON(body.Payload),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicatePendingRequest):
			respondConflict(c, "A request for this item is already pending")
		case errors.Is(err, domain.ErrInvalidExternalID):
			respondValidationError(c, err.Error())
		case errors.Is(err, domain.ErrUserNotFound):
			respondUnauthorized(c, "Unknown requester")
		default:
			respondInternalError(c, err, "Failed to submit request")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.NewRequestResponse(request))
}

// ListRequests lists requests by status in submission order
func (h *handler) ListRequests(c *gin.Context) {
	params, err := ParseListRequestsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	requests, total, err := h.store.ListRequestsByStatus(c.Request.Context(),
		domain.RequestStatus(params.Status), params.Limit, params.Offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list requests")
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedRequests(requests, params.Offset, total))
}

// GetRequest retrieves a single request by ID
func (h *handler) GetRequest(c *gin.Context) {
	requestID := c.Param("id")
	if requestID == "" {
		respondBadRequest(c, "Request ID is required")
		return
	}

	request, err := h.store.GetRequestByID(c.Request.Context(), requestID)
	if err != nil {
		respondInternalError(c, err, "Failed to load request")
		return
	}
	if request == nil {
		respondNotFound(c, "Request not found")
		return
	}

	c.JSON(http.StatusOK, dto.NewRequestResponse(request))
}

// ApproveRequest moves a pending request into the fulfillment pipeline
func (h *handler) ApproveRequest(c *gin.Context) {
	approverID := middleware.AuthSubject(c)
	if approverID == "" {
		respondUnauthorized(c, "A user identity is required to approve requests")
		return
	}

	request, err := h.approval.Approve(c.Request.Context(), c.Param("id"), approverID)
	if err != nil {
		h.respondApprovalError(c, err, "Failed to approve request")
		return
	}

	c.JSON(http.StatusOK, dto.NewRequestResponse(request))
}

// RejectRequest declines a pending request (terminal)
func (h *handler) RejectRequest(c *gin.Context) {
	approverID := middleware.AuthSubject(c)
	if approverID == "" {
		respondUnauthorized(c, "A user identity is required to reject requests")
		return
	}

	var body dto.RejectRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	request, err := h.approval.Reject(c.Request.Context(), c.Param("id"), approverID, body.Reason)
	if err != nil {
		h.respondApprovalError(c, err, "Failed to reject request")
		return
	}

	c.JSON(http.StatusOK, dto.NewRequestResponse(request))
}

// FailRequest force-fails an approved request (admin escape hatch)
func (h *handler) FailRequest(c *gin.Context) {
	adminID := middleware.AuthSubject(c)
	if adminID == "" {
		respondUnauthorized(c, "A user identity is required to force-fail requests")
		return
	}

	var body dto.FailRequestBody
	_ = c.ShouldBindJSON(&body) // Reason is optional

	request, err := h.approval.ForceFail(c.Request.Context(), c.Param("id"), adminID, body.Reason)
	if err != nil {
		h.respondApprovalError(c, err, "Failed to force-fail request")
		return
	}

	c.JSON(http.StatusOK, dto.NewRequestResponse(request))
}

// respondApprovalError maps approval gate errors to API responses. Lost
// transition races surface as conflicts, never as server errors.
func (h *handler) respondApprovalError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		respondForbidden(c, "Not authorized to perform this action")
	case errors.Is(err, domain.ErrUserNotFound):
		respondUnauthorized(c, "Unknown acting user")
	case errors.Is(err, domain.ErrRequestNotFound):
		respondNotFound(c, "Request not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		respondConflict(c, "Request is not in the required status", err.Error())
	default:
		respondInternalError(c, err, message)
	}
}

// ListCatalog lists fulfilled catalog entries
func (h *handler) ListCatalog(c *gin.Context) {
	params, err := ParseListCatalogQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	var mediaType *domain.MediaType
	if params.MediaType != "" {
		mt := domain.MediaType(params.MediaType)
		mediaType = &mt
	}

	entries, total, err := h.store.ListCatalogEntries(c.Request.Context(), mediaType, params.Limit, params.Offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list catalog entries")
		return
	}

	items := make([]dto.CatalogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewCatalogEntryResponse(entry))
	}

	c.JSON(http.StatusOK, dto.PaginatedCatalogEntries{
		Items:  items,
		Offset: params.Offset,
		Total:  total,
	})
}

// ListBlacklist lists blacklisted sources (admin)
func (h *handler) ListBlacklist(c *gin.Context) {
	if !h.authorizeAdmin(c) {
		return
	}

	sources, err := h.store.ListBlacklistedSources(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to list blacklisted sources")
		return
	}

	items := make([]dto.BlacklistedSourceResponse, 0, len(sources))
	for _, s := range sources {
		items = append(items, dto.BlacklistedSourceResponse{
			Source:    s.Source,
			Reason:    s.Reason,
			CreatedAt: s.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RemoveBlacklistedSource removes a source from the blacklist (admin)
func (h *handler) RemoveBlacklistedSource(c *gin.Context) {
	if !h.authorizeAdmin(c) {
		return
	}

	sourceName := c.Param("source")
	if sourceName == "" {
		respondBadRequest(c, "Source is required")
		return
	}

	if err := h.store.RemoveBlacklistedSource(c.Request.Context(), sourceName); err != nil {
		respondInternalError(c, err, "Failed to remove blacklisted source")
		return
	}

	c.Status(http.StatusNoContent)
}

// authorizeAdmin allows API-key callers (service identity) and admin users.
// Writes the error response itself and reports whether to proceed.
func (h *handler) authorizeAdmin(c *gin.Context) bool {
	if middleware.AuthType(c) == middleware.AuthTypeAPIKey {
		return true
	}

	userID := middleware.AuthSubject(c)
	if userID == "" {
		respondUnauthorized(c, "A user identity is required")
		return false
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "Failed to load acting user")
		return false
	}
	if user == nil || !user.IsAdmin {
		respondForbidden(c, "Administrator privileges required")
		return false
	}

	return true
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
