package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"gorm.io/datatypes"

	"github.com/shelftunes/st-requests/internal/adapter"
	"github.com/shelftunes/st-requests/internal/domain"
)

// itemResponse is the wire shape sources return for a media item lookup
type itemResponse struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Author     string `json:"author"`
	ContentURL string `json:"content_url"`
}

// HTTPAdapter fetches media items over HTTP from configured source endpoints
type HTTPAdapter struct {
	client adapter.HTTPClient
	// endpoints maps a source name to its base URL
	endpoints map[string]string
}

// NewHTTPAdapter creates an adapter routing each source to its base URL
func NewHTTPAdapter(client adapter.HTTPClient, endpoints map[string]string) *HTTPAdapter {
	return &HTTPAdapter{
		client:    client,
		endpoints: endpoints,
	}
}

// Fetch retrieves the item from its source endpoint. The HTTP client retries
// rate limits and upstream errors within its own budget; whatever error
// survives that budget is classified here into the three-way outcome.
func (a *HTTPAdapter) Fetch(ctx context.Context, mediaType domain.MediaType, externalID domain.ExternalID) (*FetchResult, error) {
	source, identifier, err := externalID.Parse()
	if err != nil {
		return nil, err
	}

	base, ok := a.endpoints[source]
	if !ok {
		return &FetchResult{
			Outcome: OutcomePermanent,
			Reason:  fmt.Sprintf("unknown source %q", source),
		}, nil
	}

	fetchURL := fmt.Sprintf("%s/%s/%s", base, url.PathEscape(string(mediaType)), url.PathEscape(identifier))

	raw, err := a.client.Get(ctx, fetchURL)
	if err != nil {
		return classifyError(err), nil
	}

	var item itemResponse
	if err := json.Unmarshal(raw, &item); err != nil {
		// A malformed document will not fix itself on retry
		return &FetchResult{
			Outcome: OutcomePermanent,
			Reason:  fmt.Sprintf("malformed source response: %v", err),
		}, nil
	}
	if item.ContentURL == "" {
		return &FetchResult{
			Outcome: OutcomePermanent,
			Reason:  "source response missing content_url",
		}, nil
	}

	return &FetchResult{
		Outcome:    OutcomeSuccess,
		ContentRef: item.ContentURL,
		Title:      item.Title,
		Artist:     item.Artist,
		Author:     item.Author,
		Metadata:   datatypes.JSON(raw),
	}, nil
}

// classifyError maps an HTTP client error to a fetch outcome. Definitive
// upstream refusals (not found, access denied, gone) are permanent; everything
// else, including exhausted retry budgets, stays transient.
func classifyError(err error) *FetchResult {
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden,
			http.StatusGone, http.StatusUnprocessableEntity:
			return &FetchResult{
				Outcome: OutcomePermanent,
				Reason:  fmt.Sprintf("source refused with status %d", statusErr.Code),
			}
		}
	}

	return &FetchResult{
		Outcome: OutcomeTransient,
		Reason:  err.Error(),
	}
}
