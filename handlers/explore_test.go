package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExploreQueryIsBounded(t *testing.T) {
	opts := exploreFindOptions()
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(exploreLimit), *opts.Limit)
}

func TestHaversine(t *testing.T) {
	assert.Zero(t, haversine(6.5244, 3.3792, 6.5244, 3.3792))

	// One degree of longitude on the equator.
	assert.InDelta(t, 111.2, haversine(0, 0, 0, 1), 0.5)
}
