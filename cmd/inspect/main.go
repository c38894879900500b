package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"batepapo/internal/database"
	"batepapo/internal/services"
	"batepapo/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found or error loading .env file: %v", err)
	}
	flags := flag.NewFlagSet("inspect", flag.ContinueOnError)
	dbURL := flags.String("db", os.Getenv("DATABASE_URL"), "store URL (postgres://... or badger://dir)")
	user := flags.String("user", "", "participant whose feed is printed")
	limit := flags.String("limit", "", "print at most this many messages")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *dbURL == "" {
		return fmt.Errorf("no store given: set -db or DATABASE_URL")
	}
	capped, err := services.ParseLimit(*limit)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, *dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	participants, err := services.NewParticipantService(db, nil, nil).List(ctx)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	table := newTable("Name", "Last seen")
	for _, p := range participants {
		table.Append([]string{p.Name, time.UnixMilli(p.LastSeen).Format(time.RFC3339)})
	}
	fmt.Printf("Participants (%d)\n", len(participants))
	table.Render()

	messages, err := services.NewFeedService(db).Feed(ctx, *user, capped)
	if err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	table = newTable("Time", "Type", "From", "To", "Text")
	for _, m := range messages {
		table.Append([]string{m.Time, string(m.Type), m.From, m.To, m.Text})
	}
	fmt.Printf("\nFeed for %q (%d)\n", *user, len(messages))
	table.Render()
	return nil
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}
