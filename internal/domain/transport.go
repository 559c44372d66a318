package domain

import "context"

// Transport performs the authenticated HTTP calls against the remote chat
// service. The engine does not care how the wire is implemented.
type Transport interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)

	// Me fetches the identity bound to the token.
	Me(ctx context.Context, token string) (*Identity, error)

	// Messages fetches the full conversation, ordered by timestamp ascending.
	Messages(ctx context.Context, token string) ([]Message, error)

	// PostMessage submits a user-authored message and returns the created
	// server record.
	PostMessage(ctx context.Context, token, sender, content string) (*Message, error)
}
