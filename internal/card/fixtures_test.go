// ABOUTME: Shared card fixtures for schema tests
// ABOUTME: Builds a valid Scryfall card map that tests mutate field by field
package card

import (
	"encoding/json"
	"testing"
)

func validCardMap() map[string]any {
	return map[string]any{
		"object":           "card",
		"id":               "0000579f-7b35-4ed3-b44c-db2a538066fe",
		"oracle_id":        "44623693-51d6-49ad-8cd7-140505caf02f",
		"lang":             "en",
		"layout":           "normal",
		"name":             "Fury Sliver",
		"type_line":        "Creature — Sliver",
		"oracle_text":      "All Sliver creatures have double strike.",
		"mana_cost":        "{5}{R}",
		"cmc":              6.0,
		"colors":           []any{"R"},
		"color_identity":   []any{"R"},
		"keywords":         []any{},
		"power":            "3",
		"toughness":        "3",
		"rarity":           "uncommon",
		"set":              "tsp",
		"set_name":         "Time Spiral",
		"collector_number": "157",
		"artist":           "Paolo Parente",
		"image_uris": map[string]any{
			"normal": "https://cards.scryfall.io/normal/front/0/0/0000579f.jpg",
		},
		"prices": map[string]any{
			"usd":      "0.31",
			"usd_foil": nil,
		},
		"legalities": map[string]any{
			"standard": "not_legal",
			"legacy":   "legal",
			"vintage":  "legal",
		},
	}
}

func basicLandMap() map[string]any {
	m := validCardMap()
	m["name"] = "Forest"
	m["type_line"] = "Basic Land — Forest"
	m["cmc"] = 0.0
	m["color_identity"] = []any{}
	m["rarity"] = "common"
	delete(m, "mana_cost")
	delete(m, "colors")
	delete(m, "power")
	delete(m, "toughness")
	delete(m, "oracle_text")
	return m
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return data
}
