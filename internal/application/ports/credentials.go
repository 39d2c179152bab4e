package ports

import "context"

type bearerTokenKey struct{}

// WithBearerToken adjunta al contexto el token del usuario para reenviarlo al backend.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey{}, token)
}

// BearerToken devuelve el token adjunto con WithBearerToken, o "".
func BearerToken(ctx context.Context) string {
	tok, _ := ctx.Value(bearerTokenKey{}).(string)
	return tok
}
