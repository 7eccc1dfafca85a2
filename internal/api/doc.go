// Package api hosts HTTP handlers that front the VidTube REST API.
//
// The handlers assembled by Handler coordinate request validation, session
// awareness, and response shaping while delegating persistence to
// storage.Repository implementations injected at construction time. Token
// issuance, renewal, and revocation are provided by the auth.Service passed
// into the handler; the package does not reach for globals or singletons and
// expects callers to supply fully configured dependencies.
//
// Handler implementations assume upstream middleware from internal/server has
// already enforced authentication, metrics, and logging concerns. New routes
// should preserve that contract by avoiding duplicate validation and by
// leaning on the middleware guarantees established in the server stack.
package api
