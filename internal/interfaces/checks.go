package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/almasmith/mercer-library/internal/audit"
	"github.com/almasmith/mercer-library/internal/auth"
	"github.com/almasmith/mercer-library/internal/database"
	"github.com/almasmith/mercer-library/internal/database/books"
	"github.com/almasmith/mercer-library/internal/database/favourites"
	"github.com/almasmith/mercer-library/internal/database/reads"
	"github.com/almasmith/mercer-library/internal/database/statsversion"
	"github.com/almasmith/mercer-library/internal/database/users"
	httpapi "github.com/almasmith/mercer-library/internal/http"
	"github.com/almasmith/mercer-library/internal/library"
	"github.com/almasmith/mercer-library/internal/realtime"
	"github.com/almasmith/mercer-library/internal/scheduler"
	"github.com/almasmith/mercer-library/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ library.BookStore = (*books.Repository)(nil)
var _ library.FavoriteStore = (*favourites.Repository)(nil)
var _ library.ReadStore = (*reads.Repository)(nil)
var _ library.StatsVersionStore = (*statsversion.Repository)(nil)
var _ auth.UserStore = (*users.Repository)(nil)
var _ httpapi.Pinger = (*database.Database)(nil)

// =============================================================================
// Services
// =============================================================================

var _ httpapi.LibraryService = (*library.Service)(nil)
var _ httpapi.AuthService = (*auth.Service)(nil)

// Audit trail
var _ auth.Auditor = (*audit.Service)(nil)
var _ library.AuditLogger = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Realtime
// =============================================================================

var _ realtime.Notifier = (*realtime.Hub)(nil)
var _ realtime.Notifier = realtime.NopNotifier{}
var _ httpapi.Subscriber = (*realtime.Hub)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ library.StatsBumpRetrier = (*tasks.Client)(nil)
var _ tasks.StatsBumper = (*statsversion.Repository)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
