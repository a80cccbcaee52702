// Package memstore is an in-memory jars store for development and tests.
//
// It is seeded from a JSON document (see Seed) with users, linetypes and
// their field descriptors, reports with precomputed groups, and raw records.
// Lines saved through it live only as long as the process. Reports are served
// exactly as seeded; nothing is computed from the saved lines.
//
// Sessions are HS256 JWTs; logging out revokes the token. Every committed
// save or delete advances the version token by hashing the previous token
// together with the change, and reads carrying a min-version that the store
// never issued fail with a ConflictException.
package memstore
