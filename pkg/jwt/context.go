package jwt

import "context"

type claimsKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

// Alias returns the caller alias stored by Middleware.
func Alias(ctx context.Context) (string, error) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", ErrMissingToken
	}
	alias := c.Alias()
	if alias == "" {
		return "", ErrMissingAlias
	}
	return alias, nil
}
