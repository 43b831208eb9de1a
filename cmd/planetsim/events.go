package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talgya/planet-ai/internal/persistence"
)

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the most recent journaled planet events",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "Number of events to show")
}

func runEvents(cmd *cobra.Command, args []string) error {
	if cfg.Journal.Path == "" {
		return errors.New("journal is disabled (journal.path is empty)")
	}
	if eventsLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", eventsLimit)
	}

	db, err := persistence.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer db.Close()

	events, err := db.RecentEvents(eventsLimit)
	if err != nil {
		return err
	}
	return printEvents(cmd.OutOrStdout(), events)
}

func printEvents(w io.Writer, events []persistence.EventRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAT\tTYPE\tLEVEL\tWITH\tPAYLOAD")
	// Oldest first reads like a log.
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		with := e.Participant
		if with == "" {
			with = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.At, e.Type, e.Channel, with, formatPayload(e.Payload))
	}
	return tw.Flush()
}

func formatPayload(p map[string]string) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, " ")
}
