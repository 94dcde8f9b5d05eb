// Package google provides OAuth2 authentication for the Gmail and Calendar APIs.
//
// The client registration is read from a credentials.json file and the user's
// token is kept as JSON in a token file (see FileTokenStore). Authenticator
// reuses a valid token, refreshes an expired one and otherwise runs the
// interactive LocalServerFlow, persisting whatever token it ends up with.
package google
