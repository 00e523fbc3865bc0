// Package search implements the search_web tool: a Google Programmable
// Search (Custom Search JSON API) client behind a TTL result cache.
//
// A Tool answers every invocation with an Envelope. Successful searches
// carry cleaned {title, description} results plus a fixed instruction for
// the calling model; failures carry a single error message. Only non-empty
// result sets are cached, keyed on the query, result count and engine id.
// The API key never takes part in the cache key.
//
// Tool is safe for concurrent use. Identical concurrent cache misses are
// coalesced into a single remote request.
package search
