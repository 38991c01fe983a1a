// Package maintenance provides one-shot tasks run instead of the responder:
// statistics pruning and dumping, and probing a live server.
package maintenance

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/a2sim/internal/config"
	"github.com/woozymasta/a2sim/internal/models"
	"github.com/woozymasta/a2sim/internal/probe"
	"github.com/woozymasta/a2sim/internal/storage"
)

// Store is the part of the statistics repository the tasks need.
type Store interface {
	Stats() ([]models.ClientStat, error)
	Prune(cutoff time.Time) (int64, error)
}

// Run checks if any maintenance flags are set and executes the corresponding tasks.
// Returns true if a maintenance task was executed (indicating the program should exit).
func Run(cfg *config.Config, out io.Writer) bool {
	if !cfg.Maintenance() {
		return false
	}

	if cfg.A2S.Probe != "" {
		log.Info().Str("target", cfg.A2S.Probe).Msg("Probing server...")
		info, err := probe.Query(cfg.A2S.Probe, cfg.A2S)
		if err != nil {
			log.Error().Err(err).Str("target", cfg.A2S.Probe).Msg("Probe failed")
			return true
		}
		probe.Print(out, cfg.A2S.Probe, info)
	}

	if cfg.Storage.Path == "" {
		return true
	}

	store, err := storage.New(cfg.Storage.Path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open statistics database")
		return true
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Storage.Prune > 0 {
		if _, err := Prune(store, cfg.Storage.Prune, time.Now()); err != nil {
			log.Error().Err(err).Msg("Failed to prune statistics")
		}
	}

	if cfg.Storage.Dump {
		if err := Dump(out, store); err != nil {
			log.Error().Err(err).Msg("Failed to dump statistics")
		}
	}

	return true
}

// Prune deletes counters of clients not seen within age of now.
func Prune(store Store, age time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-age)
	log.Info().Time("cutoff", cutoff).Msg("Pruning statistics...")

	count, err := store.Prune(cutoff)
	if err != nil {
		return 0, err
	}

	log.Info().Int64("deleted", count).Msg("Prune finished")
	return count, nil
}

// Dump writes every counter as a table.
func Dump(out io.Writer, store Store) error {
	stats, err := store.Stats()
	if err != nil {
		return err
	}

	tw := tablewriter.NewWriter(out)
	tw.SetHeader([]string{"IP", "Country", "Kind", "Requests", "Challenges", "Bytes", "Last seen"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, s := range stats {
		country := s.Country
		if country == "" {
			country = "-"
		}
		tw.Append([]string{
			s.IP,
			country,
			s.Kind,
			strconv.FormatInt(s.Requests, 10),
			strconv.FormatInt(s.Challenges, 10),
			strconv.FormatInt(s.BytesSent, 10),
			s.LastSeen.Local().Format(time.DateTime),
		})
	}
	tw.SetFooter([]string{"", "", "", "", "", "clients", fmt.Sprint(len(stats))})

	tw.Render()
	return nil
}
