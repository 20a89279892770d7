package runlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicseek/orgjobs/internal/engine/resolve"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndPreviouslySeen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	org := resolve.Org{Name: "Example Town", Type: resolve.OrgMunicipality}

	seen, err := s.PreviouslySeen(ctx, org.Name)
	require.NoError(t, err)
	assert.False(t, seen)

	err = s.Record(ctx, org, resolve.OrgResolution{
		Homepage: resolve.Resolution{URL: "https://example-town.ca"},
		JobsURL:  resolve.Resolution{URL: "https://example-town.ca/careers", DiscoveredVia: resolve.OriginPathGuess},
		Classification: resolve.Classification{
			SourceType: resolve.SourceHTMLList, AdapterID: "html_list", Confidence: 0.8,
		},
	})
	require.NoError(t, err)

	seen, err = s.PreviouslySeen(ctx, org.Name)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.PreviouslySeen(ctx, "Other Org")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestUnresolvedRowsDoNotCountAsSeen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	org := resolve.Org{Name: "Vanished Hamlet", Type: resolve.OrgMunicipality}
	err := s.Record(ctx, org, resolve.OrgResolution{
		NeedsReview:  true,
		ReviewReason: "homepage unresolved",
	})
	require.NoError(t, err)

	seen, err := s.PreviouslySeen(ctx, org.Name)
	require.NoError(t, err)
	assert.False(t, seen, "rows without a jobs URL must not mark the org as seen")
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	ctx := context.Background()

	assert.NoError(t, s.Record(ctx, resolve.Org{Name: "x"}, resolve.OrgResolution{}))
	seen, err := s.PreviouslySeen(ctx, "x")
	assert.NoError(t, err)
	assert.False(t, seen)
	assert.NoError(t, s.Close())
}
