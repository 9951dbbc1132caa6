// Package database provides the data access layer for the library API.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── versioned.go     # Concurrency tokens and the compare-and-swap primitive
//	├── books/           # Owner-scoped book CRUD, listing, genre counts
//	├── favourites/      # Favorite flags per (user, book)
//	├── reads/           # Read events for analytics
//	├── statsversion/    # Per-user stats version counter
//	├── users/           # Registered users
//	└── audit/           # Audit trail
//
// # Optimistic concurrency
//
// Versioned rows carry a row_version column. Writers that must not lose a
// concurrent update go through CompareAndSwap:
//
//	ok, err := database.CompareAndSwap(ctx, db, &entities.Book{},
//		map[string]any{"id": id}, book.RowVersion, database.NewConcurrencyToken(),
//		map[string]any{"title": "New title"})
//
// ok is false when the stored token no longer equals the expected one.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add compile-time interface checks in internal/interfaces
package database
