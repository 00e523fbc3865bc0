// Package auth authenticates callers of the HTTP tool endpoint.
//
// Two credential types are supported: static API keys, stored as SHA-256
// hashes, and HMAC-signed JWT bearer tokens. A CompositeAuthenticator tries
// each configured method in order, and Middleware enforces the result on a
// net/http handler chain.
package auth
