package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelftunes/st-requests/internal/domain"
)

func TestExternalID_Parse(t *testing.T) {
	tests := []struct {
		name       string
		externalID domain.ExternalID
		wantSource string
		wantID     string
		wantErr    bool
	}{
		{
			name:       "valid book ID",
			externalID: "openlibrary:OL7353617M",
			wantSource: "openlibrary",
			wantID:     "OL7353617M",
		},
		{
			name:       "valid song ID",
			externalID: "musicbrainz:b1a9c0e9-d987-4042-ae91-78d6a3267d69",
			wantSource: "musicbrainz",
			wantID:     "b1a9c0e9-d987-4042-ae91-78d6a3267d69",
		},
		{
			name:       "source is lowercased",
			externalID: "OpenLibrary:OL123",
			wantSource: "openlibrary",
			wantID:     "OL123",
		},
		{
			name:       "identifier keeps embedded colons",
			externalID: "archive:item:disc:1",
			wantSource: "archive",
			wantID:     "item:disc:1",
		},
		{
			name:       "missing separator",
			externalID: "OL7353617M",
			wantErr:    true,
		},
		{
			name:       "empty source",
			externalID: ":OL7353617M",
			wantErr:    true,
		},
		{
			name:       "empty identifier",
			externalID: "openlibrary:",
			wantErr:    true,
		},
		{
			name:       "empty string",
			externalID: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, id, err := tt.externalID.Parse()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidExternalID)
				assert.False(t, tt.externalID.Valid())
				assert.Empty(t, tt.externalID.Source())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSource, source)
			assert.Equal(t, tt.wantID, id)
			assert.True(t, tt.externalID.Valid())
			assert.Equal(t, tt.wantSource, tt.externalID.Source())
		})
	}
}

func TestDeriveCacheKey(t *testing.T) {
	key := domain.DeriveCacheKey(domain.MediaTypeSong, "musicbrainz:abc")

	// Deterministic
	assert.Equal(t, key, domain.DeriveCacheKey(domain.MediaTypeSong, "musicbrainz:abc"))

	// Distinct per media type and per external ID
	assert.NotEqual(t, key, domain.DeriveCacheKey(domain.MediaTypeBook, "musicbrainz:abc"))
	assert.NotEqual(t, key, domain.DeriveCacheKey(domain.MediaTypeSong, "musicbrainz:abd"))

	// sha256 hex
	assert.Len(t, string(key), 64)
}

func TestRequestStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.RequestStatusPending.IsTerminal())
	assert.False(t, domain.RequestStatusApproved.IsTerminal())
	assert.True(t, domain.RequestStatusRejected.IsTerminal())
	assert.True(t, domain.RequestStatusFulfilled.IsTerminal())
	assert.True(t, domain.RequestStatusFailed.IsTerminal())
}

func TestIsValidMediaType(t *testing.T) {
	assert.True(t, domain.IsValidMediaType(domain.MediaTypeSong))
	assert.True(t, domain.IsValidMediaType(domain.MediaTypeBook))
	assert.False(t, domain.IsValidMediaType("movie"))
	assert.False(t, domain.IsValidMediaType(""))
}
