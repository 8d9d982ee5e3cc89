// ABOUTME: Structural validation of Scryfall JSON against the card schema
// ABOUTME: Returns typed values or a ValidationError listing every offending field path
package card

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Issue is a single schema violation.
type Issue struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	path := i.Path
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("%s: %s (expected %s)", path, i.Message, i.Expected)
}

// ValidationError reports why a JSON value does not conform to the schema.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any issue points at path.
func (e *ValidationError) Has(path string) bool {
	for _, issue := range e.Issues {
		if issue.Path == path {
			return true
		}
	}
	return false
}

var requiredCardFields = map[string]string{
	"id":               "uuid",
	"lang":             "string",
	"object":           `"card"`,
	"layout":           "string",
	"name":             "string",
	"type_line":        "string",
	"cmc":              "number",
	"color_identity":   "array",
	"keywords":         "array",
	"rarity":           "string",
	"set":              "string",
	"set_name":         "string",
	"collector_number": "string",
	"prices":           "object",
	"legalities":       "object",
}

// Keys that may be absent but never null.
var optionalCardFields = []string{
	"oracle_id", "printed_name", "oracle_text", "mana_cost", "colors", "power", "toughness",
	"loyalty", "defense", "card_faces", "all_parts", "image_uris", "flavor_text", "artist",
}

var requiredFaceFields = map[string]string{
	"object":    `"card_face"`,
	"name":      "string",
	"mana_cost": "string",
}

var optionalFaceFields = []string{
	"type_line", "oracle_text", "colors", "color_indicator", "power", "toughness", "loyalty",
	"defense", "artist", "artist_id", "illustration_id", "image_uris", "flavor_text",
	"printed_name", "printed_text", "printed_type_line", "watermark",
}

var requiredPartFields = map[string]string{
	"object":    `"related_card"`,
	"id":        "uuid",
	"component": "string",
	"name":      "string",
	"type_line": "string",
	"uri":       "url",
}

var imageURIFields = []string{"small", "normal", "large", "png", "art_crop", "border_crop"}

var requiredListFields = map[string]string{
	"object":      `"list"`,
	"total_cards": "number",
	"has_more":    "boolean",
	"data":        "array",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes data as a single card and validates it.
func Parse(data []byte) (Card, error) {
	return parseCard(data, "")
}

// Validate checks an already-decoded card against the schema. It cannot see
// missing keys, only zero values, so prefer Parse for raw JSON.
func Validate(c Card) error {
	issues := structIssues(c, "")
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// ParseList decodes and validates a search result envelope.
func ParseList(data []byte) (List, error) {
	fields, issues := objectFields(data, "")
	if issues != nil {
		return List{}, &ValidationError{Issues: issues}
	}
	issues = presenceIssues(fields, requiredListFields, "")
	issues = append(issues, nullIssues(fields, []string{"next_page"}, "")...)

	var env struct {
		Object     string            `json:"object"`
		TotalCards int               `json:"total_cards"`
		HasMore    bool              `json:"has_more"`
		NextPage   string            `json:"next_page,omitempty"`
		Data       []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return List{}, &ValidationError{Issues: append(issues, decodeIssue(err, ""))}
	}
	if !hasPath(issues, "object") && env.Object != "list" {
		issues = append(issues, Issue{Path: "object", Expected: `"list"`, Message: fmt.Sprintf("invalid value %q", env.Object)})
	}
	if err := validate.Var(env.NextPage, "omitempty,url"); err != nil {
		issues = append(issues, Issue{Path: "next_page", Expected: "url", Message: "invalid url"})
	}

	list := List{
		Object:     env.Object,
		TotalCards: env.TotalCards,
		HasMore:    env.HasMore,
		NextPage:   env.NextPage,
	}
	list.Data, issues = parseCards(env.Data, "data", issues)

	if len(issues) > 0 {
		return List{}, &ValidationError{Issues: issues}
	}
	return list, nil
}

// ParseCollection decodes and validates a collection lookup envelope.
func ParseCollection(data []byte) (Collection, error) {
	fields, issues := objectFields(data, "")
	if issues != nil {
		return Collection{}, &ValidationError{Issues: issues}
	}
	issues = presenceIssues(fields, map[string]string{"data": "array"}, "")

	var env struct {
		Data     []json.RawMessage `json:"data"`
		NotFound []NotFound        `json:"not_found,omitempty"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Collection{}, &ValidationError{Issues: append(issues, decodeIssue(err, ""))}
	}

	coll := Collection{NotFound: env.NotFound}
	coll.Data, issues = parseCards(env.Data, "data", issues)

	if len(issues) > 0 {
		return Collection{}, &ValidationError{Issues: issues}
	}
	return coll, nil
}

// NameOf extracts a display name from a raw card for diagnostics, or
// "unknown" when none is present.
func NameOf(data []byte) string {
	var probe struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Name == "" {
		return "unknown"
	}
	return probe.Name
}

func parseCards(raws []json.RawMessage, prefix string, issues []Issue) ([]Card, []Issue) {
	cards := make([]Card, 0, len(raws))
	for i, raw := range raws {
		c, err := parseCard(raw, fmt.Sprintf("%s[%d]", prefix, i))
		var verr *ValidationError
		if errors.As(err, &verr) {
			issues = append(issues, verr.Issues...)
			continue
		}
		cards = append(cards, c)
	}
	return cards, issues
}

func parseCard(data []byte, prefix string) (Card, error) {
	fields, issues := objectFields(data, prefix)
	if issues != nil {
		return Card{}, &ValidationError{Issues: issues}
	}
	issues = presenceIssues(fields, requiredCardFields, prefix)
	issues = append(issues, nullIssues(fields, optionalCardFields, prefix)...)
	issues = append(issues, imageIssues(fields, prefix)...)

	faces, faceIssues := parseElements[CardFace](fields, "card_faces", prefix, requiredFaceFields, optionalFaceFields)
	parts, partIssues := parseElements[RelatedCard](fields, "all_parts", prefix, requiredPartFields, nil)
	issues = addIssues(issues, faceIssues...)
	issues = addIssues(issues, partIssues...)

	// Faces and parts were decoded element by element so their issues
	// carry the element index.
	rest := maps.Clone(fields)
	delete(rest, "card_faces")
	delete(rest, "all_parts")
	flat, err := json.Marshal(rest)
	if err != nil {
		return Card{}, fmt.Errorf("re-encode card: %w", err)
	}

	var c Card
	if err := json.Unmarshal(flat, &c); err != nil {
		return Card{}, &ValidationError{Issues: addIssues(issues, decodeIssue(err, prefix))}
	}
	c.CardFaces = faces
	c.AllParts = parts

	issues = addIssues(issues, structIssues(c, prefix)...)
	if len(issues) > 0 {
		return Card{}, &ValidationError{Issues: issues}
	}
	return c, nil
}

// parseElements decodes the array under key one element at a time, checking
// each element's keys the same way a card's keys are checked.
func parseElements[T any](fields map[string]json.RawMessage, key, prefix string, required map[string]string, optional []string) ([]T, []Issue) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	path := joinPath(prefix, key)

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, []Issue{decodeIssue(err, path)}
	}

	out := make([]T, len(elems))
	var issues []Issue
	for i, elem := range elems {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		ef, objIssues := objectFields(elem, elemPath)
		if objIssues != nil {
			issues = append(issues, objIssues...)
			continue
		}
		issues = append(issues, presenceIssues(ef, required, elemPath)...)
		issues = append(issues, nullIssues(ef, optional, elemPath)...)
		issues = append(issues, imageIssues(ef, elemPath)...)
		if err := json.Unmarshal(elem, &out[i]); err != nil {
			issues = addIssues(issues, decodeIssue(err, elemPath))
		}
	}
	return out, issues
}

// objectFields splits data into its top-level keys, or reports why it is not
// a JSON object.
func objectFields(data []byte, prefix string) (map[string]json.RawMessage, []Issue) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, []Issue{decodeIssue(err, prefix)}
	}
	if fields == nil {
		return nil, []Issue{{Path: prefix, Expected: "object", Message: "got null"}}
	}
	return fields, nil
}

// presenceIssues reports required keys that are missing or null.
func presenceIssues(fields map[string]json.RawMessage, required map[string]string, prefix string) []Issue {
	var issues []Issue
	for _, key := range sortedKeys(required) {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			issues = append(issues, Issue{
				Path:     joinPath(prefix, key),
				Expected: required[key],
				Message:  "required field missing",
			})
		}
	}
	return issues
}

// nullIssues reports optional keys that are present with a null value.
func nullIssues(fields map[string]json.RawMessage, optional []string, prefix string) []Issue {
	var issues []Issue
	for _, key := range optional {
		if raw, ok := fields[key]; ok && isNull(raw) {
			issues = append(issues, Issue{
				Path:     joinPath(prefix, key),
				Expected: "value or absent key",
				Message:  "got null",
			})
		}
	}
	return issues
}

// imageIssues rejects null renditions inside an image_uris object.
func imageIssues(fields map[string]json.RawMessage, prefix string) []Issue {
	raw, ok := fields["image_uris"]
	if !ok || isNull(raw) {
		return nil
	}
	path := joinPath(prefix, "image_uris")
	uris, issues := objectFields(raw, path)
	if issues != nil {
		return issues
	}
	return nullIssues(uris, imageURIFields, path)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func structIssues(v any, prefix string) []Issue {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Path: prefix, Expected: "card", Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, fieldIssue(fe, prefix))
	}
	return issues
}

func fieldIssue(fe validator.FieldError, prefix string) Issue {
	// Namespace is "Card.card_faces[0].name"; drop the Go type name.
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	path = joinPath(prefix, path)

	switch fe.Tag() {
	case "required":
		return Issue{Path: path, Expected: kindName(fe.Kind()), Message: "required field missing or empty"}
	case "oneof":
		return Issue{Path: path, Expected: "one of [" + fe.Param() + "]", Message: fmt.Sprintf("invalid value %v", quoted(fe.Value()))}
	case "eq":
		return Issue{Path: path, Expected: fmt.Sprintf("%q", fe.Param()), Message: fmt.Sprintf("invalid value %v", quoted(fe.Value()))}
	case "uuid", "url":
		return Issue{Path: path, Expected: fe.Tag(), Message: fmt.Sprintf("invalid %s %v", fe.Tag(), quoted(fe.Value()))}
	default:
		return Issue{Path: path, Expected: fe.Tag(), Message: fe.Error()}
	}
}

// decodeIssue converts an encoding/json error into an Issue.
func decodeIssue(err error, prefix string) Issue {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := prefix
		if typeErr.Field != "" {
			path = joinPath(prefix, typeErr.Field)
		}
		return Issue{
			Path:     path,
			Expected: kindName(typeErr.Type.Kind()),
			Message:  "got " + typeErr.Value,
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Issue{Path: prefix, Expected: "valid JSON", Message: syntaxErr.Error()}
	}
	return Issue{Path: prefix, Expected: "object", Message: err.Error()}
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	default:
		return prefix + "." + path
	}
}

func hasPath(issues []Issue, path string) bool {
	for _, issue := range issues {
		if issue.Path == path {
			return true
		}
	}
	return false
}

// addIssues appends each issue unless an existing one already covers its
// path or an enclosing path.
func addIssues(issues []Issue, more ...Issue) []Issue {
	for _, issue := range more {
		if !covered(issues, issue.Path) {
			issues = append(issues, issue)
		}
	}
	return issues
}

func covered(issues []Issue, path string) bool {
	for _, issue := range issues {
		p := issue.Path
		if p == path || strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}

func quoted(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
