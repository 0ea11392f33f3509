// Package catalog provides read-only lookup of Bible verses and songs.
//
// The catalog is loaded once from a YAML document, validated against an
// embedded CUE schema, and never mutated afterwards. All searches are
// case-insensitive substring matches that preserve catalog order; there is
// no ranking.
//
// A built-in catalog with five translations, five verses and three songs is
// embedded for demos and tests. Production deployments point --catalog at
// their own document.
package catalog
