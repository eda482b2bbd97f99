package source_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftunes/st-requests/internal/adapter"
	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/logger"
	"github.com/shelftunes/st-requests/internal/mocks"
	"github.com/shelftunes/st-requests/internal/source"
)

// testAdapterMocks contains all the mocks needed for testing the HTTP adapter
type testAdapterMocks struct {
	ctrl    *gomock.Controller
	client  *mocks.MockHTTPClient
	adapter *source.HTTPAdapter
}

func setupTestAdapter(t *testing.T) *testAdapterMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)

	tm := &testAdapterMocks{
		ctrl:   ctrl,
		client: mocks.NewMockHTTPClient(ctrl),
	}
	tm.adapter = source.NewHTTPAdapter(tm.client, map[string]string{
		"musicbrainz": "https://mb.internal",
		"openlibrary": "https://ol.internal",
	})

	return tm
}

func TestFetch_Success(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	body := []byte(`{"title":"Dune","author":"Frank Herbert","content_url":"https://cdn.internal/dune.epub"}`)
	tm.client.EXPECT().
		Get(gomock.Any(), "https://ol.internal/book/OL7353617M").
		Return(body, nil)

	result, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeBook, "openlibrary:OL7353617M")
	require.NoError(t, err)
	assert.Equal(t, source.OutcomeSuccess, result.Outcome)
	assert.Equal(t, "https://cdn.internal/dune.epub", result.ContentRef)
	assert.Equal(t, "Dune", result.Title)
	assert.Equal(t, "Frank Herbert", result.Author)
	assert.JSONEq(t, string(body), string(result.Metadata))
}

func TestFetch_UnknownSource(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	result, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeSong, "unknownsource:abc")
	require.NoError(t, err)
	assert.Equal(t, source.OutcomePermanent, result.Outcome)
	assert.Contains(t, result.Reason, "unknown source")
}

func TestFetch_MalformedExternalID(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	_, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeSong, "no-colon-here")
	assert.ErrorIs(t, err, domain.ErrInvalidExternalID)
}

func TestFetch_NotFoundIsPermanent(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	statusErr := &adapter.StatusError{Code: 404, Body: "no such item"}
	tm.client.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("request failed after retries: %w", statusErr))

	result, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeSong, "musicbrainz:b1a9c0e9")
	require.NoError(t, err)
	assert.Equal(t, source.OutcomePermanent, result.Outcome)
	assert.Contains(t, result.Reason, "404")
}

func TestFetch_AccessDeniedIsPermanent(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	// A rejected credential never fixes itself; retrying burns the budget
	statusErr := &adapter.StatusError{Code: 401, Body: "bad credentials"}
	tm.client.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("request failed after retries: %w", statusErr))

	result, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeSong, "musicbrainz:b1a9c0e9")
	require.NoError(t, err)
	assert.Equal(t, source.OutcomePermanent, result.Outcome)
	assert.Contains(t, result.Reason, "401")
}

func TestFetch_ExhaustedRetriesStayTransient(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	tm.client.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("request failed after retries: upstream error 503, retrying"))

	result, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeSong, "musicbrainz:b1a9c0e9")
	require.NoError(t, err)
	assert.Equal(t, source.OutcomeTransient, result.Outcome)
}

func TestFetch_MalformedResponseIsPermanent(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	tm.client.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return([]byte("<html>not json</html>"), nil)

	result, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeSong, "musicbrainz:b1a9c0e9")
	require.NoError(t, err)
	assert.Equal(t, source.OutcomePermanent, result.Outcome)
	assert.Contains(t, result.Reason, "malformed source response")
}

func TestFetch_MissingContentURLIsPermanent(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	tm.client.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return([]byte(`{"title":"Dune"}`), nil)

	result, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeBook, "openlibrary:OL7353617M")
	require.NoError(t, err)
	assert.Equal(t, source.OutcomePermanent, result.Outcome)
	assert.Contains(t, result.Reason, "content_url")
}

func TestFetch_EscapesIdentifierInURL(t *testing.T) {
	tm := setupTestAdapter(t)
	defer tm.ctrl.Finish()

	tm.client.EXPECT().
		Get(gomock.Any(), "https://mb.internal/song/a%2Fb").
		Return([]byte(`{"title":"t","content_url":"u"}`), nil)

	result, err := tm.adapter.Fetch(context.Background(), domain.MediaTypeSong, "musicbrainz:a/b")
	require.NoError(t, err)
	assert.Equal(t, source.OutcomeSuccess, result.Outcome)
}
