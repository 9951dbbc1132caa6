package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/almasmith/mercer-library/internal/database/statsversion"
	"github.com/almasmith/mercer-library/internal/etag"
)

// StatsVersionCommand prints a user's stats version and its entity tag, and
// can bump it to invalidate cached statistics by hand.
type StatsVersionCommand struct {
	DatabasePath string
	UserID       uint
	Bump         bool

	out io.Writer
}

func NewStatsVersionCommand() *StatsVersionCommand {
	return &StatsVersionCommand{out: os.Stdout}
}

func (cmd *StatsVersionCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("stats-version", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite database file (default: DATABASE_* settings)")
	fs.UintVar(&cmd.UserID, "user", 0, "User ID (required)")
	fs.BoolVar(&cmd.Bump, "bump", false, "Increment the version before printing it")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s stats-version -user <id> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show or bump the statistics version of a user.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s stats-version -user 1\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stats-version -user 1 -bump\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.UserID == 0 {
		fs.Usage()
		return fmt.Errorf("user is required")
	}

	return nil
}

func (cmd *StatsVersionCommand) Run() error {
	db, err := openDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	repo := statsversion.NewRepository(db.DB)

	var version uint64
	if cmd.Bump {
		version, err = repo.Bump(ctx, cmd.UserID)
	} else {
		version, err = repo.GetVersion(ctx, cmd.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to read stats version: %w", err)
	}

	fmt.Fprintf(cmd.out, "user=%d version=%d etag=%s\n", cmd.UserID, version, etag.EncodeVersion(version))
	return nil
}
