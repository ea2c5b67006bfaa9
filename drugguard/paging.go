package drugguard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrUnexpectedShape is returned when a list endpoint answers with neither a
// page object nor an array.
var ErrUnexpectedShape = errors.New("unexpected list payload")

// Page is one page of a list endpoint.
//
// Servers normally answer with {"content": [...], "totalPages": N, ...}.
// Some endpoints answer with a bare array instead; such responses decode
// with Paged set to false and only Content filled in.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	Last          bool  `json:"last"`

	// Paged is false when the server sent the items without page metadata.
	Paged bool `json:"-"`
}

// decodePage is the single decoder used by every paged call: prefer the
// content field, else the raw body as the item list.
func decodePage[T any](body []byte) (*Page[T], error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &Page[T]{Content: []T{}}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid JSON in list response")
	}

	res := gjson.ParseBytes(body)
	switch {
	case res.Type == gjson.Null:
		return &Page[T]{Content: []T{}}, nil
	case res.IsArray():
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}

		return &Page[T]{Content: items}, nil
	case res.IsObject() && res.Get("content").IsArray():
		var page Page[T]
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, err
		}
		page.Paged = true

		return &page, nil
	default:
		return nil, fmt.Errorf("%w: %.64s", ErrUnexpectedShape, body)
	}
}

// decodeList is decodePage for endpoints that return a plain list.
func decodeList[T any](body []byte) ([]T, error) {
	page, err := decodePage[T](body)
	if err != nil {
		return nil, err
	}

	return page.Content, nil
}
