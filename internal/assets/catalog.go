package assets

import _ "embed"

// CatalogData holds the raw JSON catalog: providers, tones, themes, languages
// and the default settings tree.
//
//go:embed catalog.json
var CatalogData []byte
