// Package jwt verifies the HS256 bearer tokens that authenticate API callers
// on top of github.com/golang-jwt/jwt/v5.
//
// Tokens are issued by the identity service with the same shared secret.
// Middleware parses the Authorization header, checks the signature and the
// exp/nbf claims, and stores Claims in the request context. Handlers read the
// caller with UserID(ctx).
package jwt
