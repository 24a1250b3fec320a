// Package auth provides authentication middleware for freshsense-server.
//
// APIKey(mode, header, key) returns HTTP middleware that validates the API key
// from the named request header.
//
// When mode != "apikey" or key == "", all requests pass through (useful for
// local development with auth disabled). When the key is incorrect or absent,
// the middleware answers 401 with a JSON error body.
package auth
