package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/goldlure/blogwatch/internal/config"
	"github.com/goldlure/blogwatch/internal/notify"
	"github.com/goldlure/blogwatch/internal/store"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, state and Telegram credentials",
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		ok = false
	} else {
		printCheck(true, "config.yaml (%d sources, %s tracking)", len(cfg.Sources), cfg.Track.Mode)
	}

	// State store and journal
	if cfg != nil {
		journal := notify.NewJournal(cfg.Track.Journal)
		if st, err := store.Open(cfg.Mode(), cfg.Track.Path, journal); err != nil {
			printCheck(false, "state store: %v", err)
			ok = false
		} else {
			if positions, err := st.Load(ctx); err != nil {
				printCheck(false, "state store: %v", err)
				ok = false
			} else {
				printCheck(true, "state store %s (%d sources tracked)", cfg.Track.Path, len(positions))
			}
			_ = st.Close()
		}

		if entries, err := journal.Entries(ctx); err != nil {
			printCheck(false, "journal %s: %v", cfg.Track.Journal, err)
			ok = false
		} else {
			printCheck(true, "journal %s (%d messages)", cfg.Track.Journal, len(entries))
		}
	}

	// Telegram credentials
	if cfg != nil {
		tokenSet := cfg.Telegram.Token != ""
		chatSet := cfg.Telegram.ChatID != ""
		printCheck(tokenSet, "%s is set", cfg.Telegram.TokenEnv)
		printCheck(chatSet, "%s is set", cfg.Telegram.ChatIDEnv)
		if !tokenSet || !chatSet {
			ok = false
		}

		if tokenSet && chatSet {
			client := notify.NewClient(cfg.Telegram.Token, cfg.Telegram.ChatID)
			if username, err := client.GetMe(ctx); err != nil {
				printCheck(false, "telegram api: %v", err)
				ok = false
			} else {
				printCheck(true, "telegram bot @%s", username)
			}
		} else {
			printInfo("telegram api not checked without credentials")
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("[INFO] %s\n", fmt.Sprintf(format, args...))
}
