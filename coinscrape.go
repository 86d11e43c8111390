// Package coinscrape extracts prices, percentage changes, descriptions and
// market tables from a JavaScript-rendered market data site.
//
// Fields are found through configurable locator patterns: a regular
// expression picks a tag and attribute predicate out of the raw page, the
// matching element becomes an anchor, and short relation paths
// (parent/child/sibling) walk from the anchor to the wanted content.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, http/, toml/).
package coinscrape
