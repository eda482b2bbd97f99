package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/shelftunes/st-requests/internal/domain"
)

const MAX_PAGE_SIZE = 100

// ListRequestsQueryParams holds query parameters for GET /requests
type ListRequestsQueryParams struct {
	Status string `form:"status,default=pending"`

	// Pagination
	Limit  int    `form:"limit,default=20"`
	Offset uint64 `form:"offset,default=0"`
}

// ParseListRequestsQuery parses query parameters for GET /requests
func ParseListRequestsQuery(c *gin.Context) (*ListRequestsQueryParams, error) {
	var params ListRequestsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	switch domain.RequestStatus(params.Status) {
	case domain.RequestStatusPending, domain.RequestStatusApproved,
		domain.RequestStatusRejected, domain.RequestStatusFulfilled,
		domain.RequestStatusFailed:
	default:
		return nil, fmt.Errorf("unknown status %q", params.Status)
	}

	// Cap limit
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	return &params, nil
}

// ListCatalogQueryParams holds query parameters for GET /catalog
type ListCatalogQueryParams struct {
	MediaType string `form:"media_type"`

	// Pagination
	Limit  int    `form:"limit,default=20"`
	Offset uint64 `form:"offset,default=0"`
}

// ParseListCatalogQuery parses query parameters for GET /catalog
func ParseListCatalogQuery(c *gin.Context) (*ListCatalogQueryParams, error) {
	var params ListCatalogQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.MediaType != "" && !domain.IsValidMediaType(domain.MediaType(params.MediaType)) {
		return nil, fmt.Errorf("unknown media type %q", params.MediaType)
	}

	// Cap limit
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	return &params, nil
}
