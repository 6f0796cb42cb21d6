// Package registration exposes the push and web-push registration
// endpoints. Routes expect jwt.Middleware in front of them; the caller
// alias from the token scopes tag ownership and web-push partitions.
package registration
