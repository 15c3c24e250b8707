// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package auth provides dashboard authentication.

Users log in with a username and password checked against a bcrypt hash. A
successful login issues an HS256 JWT carrying the user id, username and role,
delivered in an httpOnly cookie. Every token has a unique id (jti) so that
logout can revoke it before expiry; revoked ids are kept in a BadgerDB store
with a TTL equal to the token's remaining lifetime.

# Middleware

Middleware.Authenticate accepts the token from the cookie or from an
"Authorization: Bearer" header, verifies signature and expiry, rejects
revoked ids and loads the user from the store. Handlers read the result with
UserFromContext and ClaimsFromContext.

Role checks live in the authz package.
*/
package auth
