package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceMarshal(t *testing.T) {
	known, err := json.Marshal(KnownPrice(54.99))
	require.NoError(t, err)
	assert.Equal(t, `54.99`, string(known))

	unknown, err := json.Marshal(Price{})
	require.NoError(t, err)
	assert.Equal(t, `"Unknown"`, string(unknown))
}

func TestPriceUnmarshal(t *testing.T) {
	var p Price
	require.NoError(t, json.Unmarshal([]byte(`54.99`), &p))
	assert.Equal(t, KnownPrice(54.99), p)

	require.NoError(t, json.Unmarshal([]byte(`"$54.99"`), &p))
	assert.Equal(t, KnownPrice(54.99), p)

	require.NoError(t, json.Unmarshal([]byte(`"Unknown"`), &p))
	assert.False(t, p.Known)
}

func TestListingUsable(t *testing.T) {
	assert.True(t, Listing{Price: 10}.Usable())
	assert.True(t, Listing{URL: "https://x"}.Usable())
	assert.False(t, Listing{Title: "ghost"}.Usable())
}
