package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	auditrepo "github.com/almasmith/mercer-library/internal/database/audit"
)

// AuditLogCommand prints the most recent audit events.
type AuditLogCommand struct {
	DatabasePath string
	UserID       uint
	Limit        int

	out io.Writer
}

func NewAuditLogCommand() *AuditLogCommand {
	return &AuditLogCommand{out: os.Stdout}
}

func (cmd *AuditLogCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("audit-log", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite database file (default: DATABASE_* settings)")
	fs.UintVar(&cmd.UserID, "user", 0, "Only show events of this user (default: all users)")
	fs.IntVar(&cmd.Limit, "limit", 20, "Number of events to show")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s audit-log [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List recent audit events, newest first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}

	return nil
}

func (cmd *AuditLogCommand) Run() error {
	db, err := openDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	events, total, err := auditrepo.NewRepository(db.DB).GetEvents(context.Background(), cmd.UserID, cmd.Limit, 0)
	if err != nil {
		return fmt.Errorf("failed to load audit events: %w", err)
	}

	w := tabwriter.NewWriter(cmd.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tUSER\tTYPE\tACTION\tSTATUS\tDESCRIPTION")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.UserID, e.EventType, e.Action, e.Status, e.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "%d of %d events\n", len(events), total)
	return nil
}
