// Package blog provides the content service behind a blog: posts, categories,
// comments and uploaded media, with ownership and role based authorization.
//
// It exposes a single Service interface that enforces the business rules
// (publication state, ownership, admin override, cascading comment cleanup)
// on top of pluggable collaborators. Implementations of repositories (memory,
// Postgres), identity stores and blob stores (memory, filesystem, S3) are
// provided under subpackages.
//
// Identity
//
// The service never verifies credentials. The caller's identity is resolved
// from the request context through an IdentityResolver; the default resolver
// reads the Identity placed there with WithIdentity (see the auth subpackage
// for the JWT middleware that does so).
//
// References
//
// A post may reference a category and a featured media file. Neither reference
// cascades: deleting a category or media file leaves the post intact, and reads
// return the post with the dangling reference cleared.
package blog
