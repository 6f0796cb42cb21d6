// Package jwt authenticates API callers with HS256 bearer tokens using
// github.com/golang-jwt/jwt/v5.
//
// The caller alias, the local part of the upn (or email) claim, scopes
// registration tags and web-push partitions. Handlers read it with Alias.
package jwt
