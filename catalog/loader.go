// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// LoadFile reads a catalog from a JSON file containing an array of content
// items. The caller is expected to feed the result through AddContents,
// which performs schema validation.
func LoadFile(path string) ([]ContentItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a JSON array of content items from r.
func Load(r io.Reader) ([]ContentItem, error) {
	var items []ContentItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return items, nil
}
