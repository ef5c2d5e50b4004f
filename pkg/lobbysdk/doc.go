/*
Package lobbysdk is the client side of the lobby game/account service: a
request pipeline that carries the bearer token on every call, and a Session
that owns the token lifecycle.

# Client vs Session

Client sends requests. It reads the current token from a credstore.Store
immediately before each call, so it always uses whatever the Session last
persisted:

	store := credstore.NewMemory()
	client := lobbysdk.NewClient("https://api.example.com", store, logger)

	env, err := client.Send(ctx, "/GetGameRooms", http.MethodPost, nil)

Session establishes and clears identity. It is the only writer of the
persisted token and user records:

	session := lobbysdk.NewSession(client, logger)

	// Silent sign-in from a remembered token
	if !session.AutoLogin(ctx) {
		err := session.Login(ctx, lobbysdk.Credentials{
			Username:   "alice",
			Password:   "hunter2",
			RememberMe: true,
		})
	}

	session.Logout(ctx)

# Request Shape

Body-carrying methods send the payload as a JSON object with a "token" field
merged in; the token wins if the payload already has one. GET and HEAD carry
the token in the query string. Every request also carries
"Authorization: Bearer <token>" and an X-Request-ID.

# Error Handling

Responses are wrapped in an Envelope. The pipeline distinguishes three
failure families:

	env, err := client.Send(ctx, "/JoinGameRoom", http.MethodPost, payload)

	var domainErr *lobbysdk.DomainError
	switch {
	case errors.As(err, &domainErr):
		// HTTP 200 but envelope code != 200
	case errors.Is(err, lobbysdk.ErrUnauthorized):
		// HTTP 401; the session has already been cleared
	case errors.Is(err, lobbysdk.ErrServer):
		// HTTP 5xx
	}

Nothing is retried. A 401 runs every hook registered with
Client.OnUnauthorized before Send returns, so by the time the caller sees
the error the persisted token is gone.

# Thread Safety

Client and Session are safe for concurrent use. Concurrent Login calls for
the same username, and concurrent AutoLogin calls, share one round-trip.
*/
package lobbysdk
