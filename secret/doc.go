// Package secret turns configuration values into credentials.
//
// A value may be a plain string, a ${VAR} expansion handled by
// ExpandEnvStrict, or a reference of the form "secretref:<provider>:<path>"
// handled by a Resolver backed by a Registry of providers. References may
// fill a whole value or sit inside one:
//
//	secretref:env:GOOGLE_CSE_API_KEY
//	secretref:file:/run/secrets/google_cse_key
//	Bearer secretref:env:WEBSEARCH_TOKEN
package secret
