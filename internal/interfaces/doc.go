// Package interfaces documents the seams between the layers of the library
// API and holds the compile-time checks that keep them honest.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: owner-scoped books with guarded writes (internal/library/interfaces.go)
//   - FavoriteStore: idempotent favorite marks (internal/library/interfaces.go)
//   - ReadStore: read events joined with their books (internal/library/interfaces.go)
//   - StatsVersionStore: per-user stats version counter (internal/library/interfaces.go)
//   - UserStore: accounts and lockout counters (internal/auth/service.go)
//
// ## Service Interfaces
//
//   - LibraryService, AuthService: what the HTTP controllers call (internal/http/stores.go)
//   - Pinger: readiness probe (internal/http/stores.go)
//   - Auditor, AuditLogger: audit trail hooks (internal/auth, internal/library)
//
// ## Realtime and Background Interfaces
//
//   - Notifier: per-user change events (internal/realtime/notifier.go)
//   - Subscriber: SSE subscriptions (internal/http/events.go)
//   - StatsBumpRetrier: deferred stats version bumps (internal/library/interfaces.go)
//   - AuditCleanupEnqueuer: cron-driven housekeeping (internal/scheduler/housekeeping.go)
//
// # Adding a Mutation That Affects Statistics
//
//  1. Load the book with BookStore.GetForOwner and return a not-found
//     outcome when it is missing or foreign.
//
//  2. Check the precondition, then write with a fresh concurrency token:
//
//     next, ok, err := s.books.Update(ctx, id, userID, expected, fields)
//
//  3. Call afterMutation with the event name so the stats version is bumped
//     and the user's connections are told.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the entity to the AutoMigrate list in internal/database/database.go
//
//  4. Add compile-time check:
//
//     var _ library.SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
