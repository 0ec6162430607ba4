// Package service contains the application-specific use cases of LexiLoop.
// It orchestrates interactions between domain objects, the vocabulary catalog
// and the stores defined in internal/store.
//
// Each use case lives in its own subpackage:
//
//   - mastery: read-modify-write of a single mastery record
//   - review: the due queue for a user
//   - session: transactional ingestion of completed study sessions
//   - goals: weekly goal tracking
//   - stats: progress aggregation
//   - story: vocabulary story generation
//   - auth: bearer token validation
//
// Services receive dependencies through constructor injection and depend on
// store interfaces, never on a specific backend. Errors are returned as
// sentinels for expected conditions or wrapped in ServiceError.
package service
