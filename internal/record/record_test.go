// ABOUTME: Tests for the flattened card projection
// ABOUTME: Verifies defaults, JSON blobs and property round-trips
package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/oracle/internal/card"
)

func sampleCard() card.Card {
	usd := "0.25"
	return card.Card{
		ID:              "0000579f-7b35-4ed3-b44c-db2a538066fe",
		OracleID:        "44623693-51d6-49ad-8cd7-140505caf02f",
		Object:          "card",
		Lang:            "en",
		Layout:          "normal",
		Name:            "Forest",
		TypeLine:        "Basic Land — Forest",
		CMC:             0,
		ColorIdentity:   []string{},
		Keywords:        []string{},
		Rarity:          "common",
		Set:             "lea",
		SetName:         "Limited Edition Alpha",
		CollectorNumber: "294",
		Prices:          map[string]*string{"usd": &usd, "eur": nil},
		Legalities:      map[string]string{"vintage": "legal"},
	}
}

func TestFromCard(t *testing.T) {
	rec, err := FromCard(sampleCard())
	require.NoError(t, err)

	t.Run("optional text defaults to empty", func(t *testing.T) {
		assert.Equal(t, "", rec.ManaCost)
		assert.Equal(t, "", rec.OracleText)
		assert.Equal(t, "", rec.FlavorText)
		assert.Equal(t, "", rec.Artist)
		assert.Equal(t, "", rec.Power)
	})

	t.Run("missing colors become an empty list", func(t *testing.T) {
		assert.NotNil(t, rec.Colors)
		assert.Empty(t, rec.Colors)
	})

	t.Run("nested maps become JSON text", func(t *testing.T) {
		assert.JSONEq(t, `{"vintage":"legal"}`, rec.LegalitiesJSON)
		assert.JSONEq(t, `{"usd":"0.25","eur":null}`, rec.PricesJSON)

		legal, err := rec.Legalities()
		require.NoError(t, err)
		assert.Equal(t, "legal", legal["vintage"])
	})

	t.Run("scalars pass through", func(t *testing.T) {
		assert.Equal(t, "0000579f-7b35-4ed3-b44c-db2a538066fe", rec.ID)
		assert.Equal(t, "Forest", rec.Name)
		assert.Equal(t, "common", rec.Rarity)
		assert.Equal(t, "normal", rec.Layout)
	})
}

func TestPropertiesRoundTrip(t *testing.T) {
	rec, err := FromCard(sampleCard())
	require.NoError(t, err)
	rec.Colors = []string{"G"}

	props := rec.Properties()
	assert.NotContains(t, props, "id")
	assert.Equal(t, rec.ID, props["scryfall_id"])
	assert.Len(t, props, len(Fields))
	for _, field := range Fields {
		assert.Contains(t, props, field)
	}

	// Stores hand back decoded JSON, so lists arrive as []any.
	props["colors"] = []any{"G"}
	assert.Equal(t, rec, FromProperties(props))
}
