package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goldlure/blogwatch/internal/config"
	"github.com/goldlure/blogwatch/internal/notify"
	"github.com/goldlure/blogwatch/internal/store"
	"github.com/goldlure/blogwatch/internal/track"
	"github.com/spf13/cobra"
)

var stateFormat string

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the tracked position for each configured source",
	RunE:  stateAction,
}

func init() {
	stateCmd.Flags().StringVar(&stateFormat, "format", "terminal", "output format: terminal or json")
	rootCmd.AddCommand(stateCmd)
}

type jsonSourceState struct {
	Source    string `json:"source"`
	Tracked   bool   `json:"tracked"`
	LinksSeen int    `json:"links_seen,omitempty"`
	LastLink  string `json:"last_link,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
}

type jsonStateOutput struct {
	Mode    string            `json:"mode"`
	Sources []jsonSourceState `json:"sources"`
}

func stateAction(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Mode(), cfg.Track.Path, notify.NewJournal(cfg.Track.Journal))
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer st.Close()

	positions, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}

	switch stateFormat {
	case "json":
		return printStateJSON(os.Stdout, cfg, positions)
	case "terminal":
		printStateTerminal(os.Stdout, cfg, positions)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want terminal or json)", stateFormat)
	}
}

func printStateTerminal(w io.Writer, cfg *config.Config, positions map[string]track.Position) {
	fmt.Fprintf(w, "Tracking mode: %s\n\n", cfg.Track.Mode)
	for _, src := range cfg.Sources {
		pos, ok := positions[src.Name]
		if !ok {
			fmt.Fprintf(w, "%-24s (not tracked yet)\n", src.Name)
			continue
		}
		switch p := pos.(type) {
		case track.SeenSet:
			fmt.Fprintf(w, "%-24s %d links seen\n", src.Name, len(p))
		case track.LastLink:
			fmt.Fprintf(w, "%-24s %s\n", src.Name, string(p))
		case track.LastDate:
			fmt.Fprintf(w, "%-24s %s\n", src.Name, string(p))
		}
	}
}

func printStateJSON(w io.Writer, cfg *config.Config, positions map[string]track.Position) error {
	out := jsonStateOutput{Mode: cfg.Track.Mode}
	for _, src := range cfg.Sources {
		entry := jsonSourceState{Source: src.Name}
		if pos, ok := positions[src.Name]; ok {
			entry.Tracked = true
			switch p := pos.(type) {
			case track.SeenSet:
				entry.LinksSeen = len(p)
			case track.LastLink:
				entry.LastLink = string(p)
			case track.LastDate:
				entry.LastDate = string(p)
			}
		}
		out.Sources = append(out.Sources, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
