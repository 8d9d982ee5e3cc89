// ABOUTME: Scryfall card data model
// ABOUTME: Card, face, related-card and envelope types with validation tags
package card

// Closed value sets enforced by the schema.
var (
	Rarities   = []string{"common", "uncommon", "rare", "mythic", "special", "bonus"}
	Legalities = []string{"legal", "not_legal", "restricted", "banned"}
	Colors     = []string{"W", "U", "B", "R", "G"}
	Components = []string{"token", "meld_part", "meld_result", "combo_piece"}
)

// ImageURIs holds the image renditions Scryfall provides for a card or face.
type ImageURIs struct {
	Small      string `json:"small,omitempty" validate:"omitempty,url"`
	Normal     string `json:"normal,omitempty" validate:"omitempty,url"`
	Large      string `json:"large,omitempty" validate:"omitempty,url"`
	PNG        string `json:"png,omitempty" validate:"omitempty,url"`
	ArtCrop    string `json:"art_crop,omitempty" validate:"omitempty,url"`
	BorderCrop string `json:"border_crop,omitempty" validate:"omitempty,url"`
}

// CardFace is one face of a split, transform or modal card.
type CardFace struct {
	Object          string     `json:"object" validate:"required,eq=card_face"`
	Name            string     `json:"name" validate:"required"`
	ManaCost        string     `json:"mana_cost"`
	TypeLine        string     `json:"type_line,omitempty"`
	OracleText      string     `json:"oracle_text,omitempty"`
	Colors          []string   `json:"colors,omitempty" validate:"omitempty,dive,oneof=W U B R G"`
	ColorIndicator  []string   `json:"color_indicator,omitempty" validate:"omitempty,dive,oneof=W U B R G"`
	Power           string     `json:"power,omitempty"`
	Toughness       string     `json:"toughness,omitempty"`
	Loyalty         string     `json:"loyalty,omitempty"`
	Defense         string     `json:"defense,omitempty"`
	Artist          string     `json:"artist,omitempty"`
	ArtistID        string     `json:"artist_id,omitempty" validate:"omitempty,uuid"`
	IllustrationID  string     `json:"illustration_id,omitempty" validate:"omitempty,uuid"`
	ImageURIs       *ImageURIs `json:"image_uris,omitempty"`
	FlavorText      string     `json:"flavor_text,omitempty"`
	PrintedName     string     `json:"printed_name,omitempty"`
	PrintedText     string     `json:"printed_text,omitempty"`
	PrintedTypeLine string     `json:"printed_type_line,omitempty"`
	Watermark       string     `json:"watermark,omitempty"`
}

// RelatedCard references a token, meld part or combo piece.
type RelatedCard struct {
	Object    string `json:"object" validate:"required,eq=related_card"`
	ID        string `json:"id" validate:"required,uuid"`
	Component string `json:"component" validate:"required,oneof=token meld_part meld_result combo_piece"`
	Name      string `json:"name" validate:"required"`
	TypeLine  string `json:"type_line" validate:"required"`
	URI       string `json:"uri" validate:"required,url"`
}

// Card is a single printing of a Magic: The Gathering card.
//
// Power, toughness, loyalty and defense are strings because Scryfall prints
// values like "*" or "1+*".
type Card struct {
	ID       string `json:"id" validate:"required,uuid"`
	Lang     string `json:"lang" validate:"required"`
	Object   string `json:"object" validate:"required,eq=card"`
	OracleID string `json:"oracle_id,omitempty" validate:"omitempty,uuid"`
	Layout   string `json:"layout" validate:"required"`

	Name          string   `json:"name" validate:"required"`
	PrintedName   string   `json:"printed_name,omitempty"`
	TypeLine      string   `json:"type_line" validate:"required"`
	OracleText    string   `json:"oracle_text,omitempty"`
	ManaCost      string   `json:"mana_cost,omitempty"`
	CMC           float64  `json:"cmc"`
	Colors        []string `json:"colors,omitempty" validate:"omitempty,dive,oneof=W U B R G"`
	ColorIdentity []string `json:"color_identity" validate:"required,dive,oneof=W U B R G"`
	Keywords      []string `json:"keywords" validate:"required"`
	Power         string   `json:"power,omitempty"`
	Toughness     string   `json:"toughness,omitempty"`
	Loyalty       string   `json:"loyalty,omitempty"`
	Defense       string   `json:"defense,omitempty"`

	CardFaces []CardFace    `json:"card_faces,omitempty" validate:"omitempty,dive"`
	AllParts  []RelatedCard `json:"all_parts,omitempty" validate:"omitempty,dive"`
	ImageURIs *ImageURIs    `json:"image_uris,omitempty"`

	Rarity          string `json:"rarity" validate:"required,oneof=common uncommon rare mythic special bonus"`
	Set             string `json:"set" validate:"required"`
	SetName         string `json:"set_name" validate:"required"`
	CollectorNumber string `json:"collector_number" validate:"required"`
	FlavorText      string `json:"flavor_text,omitempty"`
	Artist          string `json:"artist,omitempty"`

	Prices     map[string]*string `json:"prices" validate:"required"`
	Legalities map[string]string  `json:"legalities" validate:"required,dive,oneof=legal not_legal restricted banned"`
}

// ImageURL returns the best available normal-size image for the card,
// falling back to the first face for double-faced layouts.
func (c Card) ImageURL() string {
	if c.ImageURIs != nil && c.ImageURIs.Normal != "" {
		return c.ImageURIs.Normal
	}
	for _, face := range c.CardFaces {
		if face.ImageURIs != nil && face.ImageURIs.Normal != "" {
			return face.ImageURIs.Normal
		}
	}
	return ""
}

// List is the envelope returned by a card search.
type List struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page,omitempty"`
	Data       []Card `json:"data"`
}

// NotFound is an identifier the collection endpoint could not resolve.
type NotFound struct {
	Name string `json:"name,omitempty"`
}

// Collection is the envelope returned by a collection lookup.
type Collection struct {
	Data     []Card     `json:"data"`
	NotFound []NotFound `json:"not_found,omitempty"`
}
