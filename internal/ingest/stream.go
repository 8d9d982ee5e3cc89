// ABOUTME: Incremental iterator over the elements of a top-level JSON array
// ABOUTME: Decodes one element at a time so bulk exports never load fully into memory
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotArray is returned when the input does not start with '['.
var ErrNotArray = errors.New("input is not a JSON array")

// Element is one raw array element in file order.
type Element struct {
	Index int
	Raw   json.RawMessage
}

// Stream calls fn for every element of the top-level JSON array in r.
// Iteration stops at the first error from fn or from the decoder.
func Stream(r io.Reader, fn func(Element) error) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty input", ErrNotArray)
		}
		return fmt.Errorf("failed to read input: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return ErrNotArray
	}

	for i := 0; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode element %d: %w", i, err)
		}
		if err := fn(Element{Index: i, Raw: raw}); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read end of array: %w", err)
	}
	return nil
}
