// ABOUTME: Flattened storage projection of a validated card
// ABOUTME: Scalars pass through, optional text defaults to "", nested maps become JSON text
package record

import (
	"encoding/json"
	"fmt"

	"github.com/harper/oracle/internal/card"
)

// Record is the shape written to collection stores. Stores that do not model
// nested maps keep legalities and prices as opaque JSON text.
type Record struct {
	ID              string   `json:"scryfall_id"`
	OracleID        string   `json:"oracle_id"`
	Name            string   `json:"name"`
	TypeLine        string   `json:"type_line"`
	OracleText      string   `json:"oracle_text"`
	ManaCost        string   `json:"mana_cost"`
	CMC             float64  `json:"cmc"`
	Colors          []string `json:"colors"`
	ColorIdentity   []string `json:"color_identity"`
	Keywords        []string `json:"keywords"`
	Power           string   `json:"power"`
	Toughness       string   `json:"toughness"`
	Loyalty         string   `json:"loyalty"`
	Set             string   `json:"set"`
	SetName         string   `json:"set_name"`
	Rarity          string   `json:"rarity"`
	CollectorNumber string   `json:"collector_number"`
	FlavorText      string   `json:"flavor_text"`
	Artist          string   `json:"artist"`
	Layout          string   `json:"layout"`
	LegalitiesJSON  string   `json:"legalities_json"`
	PricesJSON      string   `json:"prices_json"`
}

// FromCard projects a validated card into a Record.
func FromCard(c card.Card) (Record, error) {
	legalities, err := json.Marshal(c.Legalities)
	if err != nil {
		return Record{}, fmt.Errorf("marshal legalities: %w", err)
	}
	prices, err := json.Marshal(c.Prices)
	if err != nil {
		return Record{}, fmt.Errorf("marshal prices: %w", err)
	}

	colors := c.Colors
	if colors == nil {
		colors = []string{}
	}
	keywords := c.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return Record{
		ID:              c.ID,
		OracleID:        c.OracleID,
		Name:            c.Name,
		TypeLine:        c.TypeLine,
		OracleText:      c.OracleText,
		ManaCost:        c.ManaCost,
		CMC:             c.CMC,
		Colors:          colors,
		ColorIdentity:   c.ColorIdentity,
		Keywords:        keywords,
		Power:           c.Power,
		Toughness:       c.Toughness,
		Loyalty:         c.Loyalty,
		Set:             c.Set,
		SetName:         c.SetName,
		Rarity:          c.Rarity,
		CollectorNumber: c.CollectorNumber,
		FlavorText:      c.FlavorText,
		Artist:          c.Artist,
		Layout:          c.Layout,
		LegalitiesJSON:  string(legalities),
		PricesJSON:      string(prices),
	}, nil
}

// Properties returns the record as a store property map keyed by JSON name.
// The card id travels as "scryfall_id" since "id" is reserved by Weaviate.
func (r Record) Properties() map[string]any {
	return map[string]any{
		"scryfall_id":      r.ID,
		"oracle_id":        r.OracleID,
		"name":             r.Name,
		"type_line":        r.TypeLine,
		"oracle_text":      r.OracleText,
		"mana_cost":        r.ManaCost,
		"cmc":              r.CMC,
		"colors":           r.Colors,
		"color_identity":   r.ColorIdentity,
		"keywords":         r.Keywords,
		"power":            r.Power,
		"toughness":        r.Toughness,
		"loyalty":          r.Loyalty,
		"set":              r.Set,
		"set_name":         r.SetName,
		"rarity":           r.Rarity,
		"collector_number": r.CollectorNumber,
		"flavor_text":      r.FlavorText,
		"artist":           r.Artist,
		"layout":           r.Layout,
		"legalities_json":  r.LegalitiesJSON,
		"prices_json":      r.PricesJSON,
	}
}

// Fields lists the property names in Properties, for store queries that
// must name what they return.
var Fields = []string{
	"scryfall_id", "oracle_id", "name", "type_line", "oracle_text", "mana_cost", "cmc",
	"colors", "color_identity", "keywords", "power", "toughness", "loyalty", "set",
	"set_name", "rarity", "collector_number", "flavor_text", "artist", "layout",
	"legalities_json", "prices_json",
}

// FromProperties rebuilds a Record from a store property map. Unknown or
// mistyped values are left at their zero value.
func FromProperties(props map[string]any) Record {
	return Record{
		ID:              str(props["scryfall_id"]),
		OracleID:        str(props["oracle_id"]),
		Name:            str(props["name"]),
		TypeLine:        str(props["type_line"]),
		OracleText:      str(props["oracle_text"]),
		ManaCost:        str(props["mana_cost"]),
		CMC:             num(props["cmc"]),
		Colors:          strs(props["colors"]),
		ColorIdentity:   strs(props["color_identity"]),
		Keywords:        strs(props["keywords"]),
		Power:           str(props["power"]),
		Toughness:       str(props["toughness"]),
		Loyalty:         str(props["loyalty"]),
		Set:             str(props["set"]),
		SetName:         str(props["set_name"]),
		Rarity:          str(props["rarity"]),
		CollectorNumber: str(props["collector_number"]),
		FlavorText:      str(props["flavor_text"]),
		Artist:          str(props["artist"]),
		Layout:          str(props["layout"]),
		LegalitiesJSON:  str(props["legalities_json"]),
		PricesJSON:      str(props["prices_json"]),
	}
}

// Legalities decodes the legalities blob.
func (r Record) Legalities() (map[string]string, error) {
	var out map[string]string
	if err := json.Unmarshal([]byte(r.LegalitiesJSON), &out); err != nil {
		return nil, fmt.Errorf("decode legalities: %w", err)
	}
	return out, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

func strs(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
