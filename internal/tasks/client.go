package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/almasmith/mercer-library/internal/logging"
)

// enqueueTimeout bounds how long a request-side enqueue may wait on the
// queue database.
const enqueueTimeout = 5 * time.Second

// Client wraps backlite to provide the background task queue.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.RWMutex
	started bool
}

// DatabasePath returns the queue database path for a main SQLite database:
// the same directory and name with a "-tasks" suffix.
func DatabasePath(mainDBPath string) string {
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(dir, name+"-tasks"+ext)
}

// NewClient opens the dedicated queue database at DatabasePath(mainDBPath)
// and installs the backlite schema.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	setStatsBumpPolicy(cfg)

	db, err := sql.Open("sqlite3", DatabasePath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &queueLogger{entry: logging.Logger.WithField("component", "tasks")},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}

	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{
		client: client,
		db:     db,
		config: cfg,
	}, nil
}

// Register registers task queues with the client.
// Must be called before Start().
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start begins processing tasks. It does not block.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	logging.Logger.WithField("workers", c.config.Workers).Info("Task queue started")
	c.client.Start(ctx)
}

// Stop waits for active tasks to complete. It returns false if the context
// expired first.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	if !c.started {
		c.mu.RUnlock()
		return true
	}
	c.mu.RUnlock()

	logging.Logger.Info("Stopping task queue...")
	success := c.client.Stop(ctx)
	if success {
		logging.Logger.Info("Task queue stopped gracefully")
	} else {
		logging.Logger.Warn("Task queue stopped with timeout (some tasks may not have completed)")
	}
	return success
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.client.Add(tasks...)
}

// Status returns the status of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

// EnqueueStatsBump schedules a retry of a stats version bump that failed
// after its mutation had committed.
func (c *Client) EnqueueStatsBump(ctx context.Context, userID uint) error {
	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	_, err := c.Add(StatsBumpTask{UserID: userID}).Ctx(ctx).Save()
	if err != nil {
		return fmt.Errorf("failed to enqueue stats bump for user %d: %w", userID, err)
	}
	return nil
}

// EnqueueAuditCleanup schedules a purge of audit events older than
// retentionDays.
func (c *Client) EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error) {
	ids, err := c.Add(CleanupAuditEventsTask{RetentionDays: retentionDays}).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue audit cleanup: %w", err)
	}
	return ids[0], nil
}

// queueLogger implements backlite.Logger on logrus.
type queueLogger struct {
	entry *logrus.Entry
}

func (l *queueLogger) Info(message string, params ...any) {
	l.entry.WithFields(pairs(params)).Info(message)
}

func (l *queueLogger) Error(message string, params ...any) {
	l.entry.WithFields(pairs(params)).Error(message)
}

// pairs turns backlite's alternating key/value params into logrus fields.
func pairs(params []any) logrus.Fields {
	fields := make(logrus.Fields, len(params)/2)
	for i := 0; i+1 < len(params); i += 2 {
		fields[fmt.Sprint(params[i])] = params[i+1]
	}
	return fields
}
