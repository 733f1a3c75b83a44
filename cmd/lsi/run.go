package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsi-dev/lsi/cache"
	"github.com/lsi-dev/lsi/config"
	"github.com/lsi-dev/lsi/filter"
	"github.com/lsi-dev/lsi/hosts"
	"github.com/lsi-dev/lsi/profile"
	"github.com/lsi-dev/lsi/providers/aws"
	"github.com/lsi-dev/lsi/render"
)

func runRoot(cmd *cobra.Command, args []string) error {
	if flagDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SilenceUsage = true

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if len(cfg.DefaultColumns) > 0 {
		hosts.DefaultColumns = cfg.DefaultColumns
	}

	if flagAttributes {
		for _, attr := range hosts.ListAttributes() {
			fmt.Println(attr)
		}
		fmt.Println("tags.<name>")
		return nil
	}

	if flagHost != "" {
		return printHost(ctx, cfg)
	}

	prof, err := loadProfile(cfg)
	if err != nil {
		return err
	}
	prof.Override(flagUsername, flagIdentity, flagCommand, args, flagExclude)
	prof.IdentityFile = expandPath(prof.IdentityFile)
	if flagYes {
		prof.NoPrompt = true
	}

	entries, err := loadEntries(ctx, cfg)
	if err != nil {
		return err
	}
	if flagRefreshOnly {
		fmt.Printf("Refreshed cache with %d entries.\n", len(entries))
		return nil
	}

	entries, err = filter.ApplyTexts(entries, prof.Filters, prof.Exclude)
	if err != nil {
		return err
	}
	log.Debug().Int("count", len(entries)).Msg("entries after filtering")

	switch {
	case len(flagGet) > 0:
		return runCopy(ctx, cfg, prof, entries, true, flagGet)
	case len(flagPut) > 0:
		return runCopy(ctx, cfg, prof, entries, false, flagPut)
	case wantsSSH(prof):
		return runSSH(ctx, cfg, prof, entries)
	default:
		return printEntries(entries)
	}
}

// wantsSSH reports whether the invocation should enter the ssh dialog.
// Any connection-shaping flag implies it, not just --ssh itself.
func wantsSSH(prof *profile.Profile) bool {
	return flagSSH || flagUsername != "" || flagIdentity != "" || flagProfile != "" || prof.Command != ""
}

// loadProfile resolves the profile named by -p, falling back to the
// default section when no name is given. An explicit -u or -i skips the
// profile file entirely, so a default section cannot smuggle in a stored
// command or filters. Flag values override whatever the profile carries.
func loadProfile(cfg *config.Config) (*profile.Profile, error) {
	if flagUsername != "" || flagIdentity != "" {
		return &profile.Profile{}, nil
	}
	return profile.Load(cfg.ProfilePath, flagProfile)
}

// loadEntries returns the inventory, from the cache when it is still
// fresh, otherwise live from the provider (repopulating the cache).
func loadEntries(ctx context.Context, cfg *config.Config) ([]hosts.Entry, error) {
	c := cache.New(cfg.CachePath, cfg.CacheDays)
	if !flagLatest && !flagRefreshOnly && c.Valid(time.Now()) {
		entries, err := c.Read()
		if err == nil {
			log.Debug().Int("count", len(entries)).Msg("loaded entries from cache")
			return entries, nil
		}
		log.Warn().Err(err).Msg("cache unreadable, fetching fresh inventory")
	}

	provider, err := aws.New(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}
	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " fetching instances..."
	spin.Start()
	entries, err := provider.FetchRunningInstances(ctx)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	log.Debug().Int("count", len(entries)).Str("region", provider.Region()).Msg("fetched instances")
	if err := c.Write(entries); err != nil {
		log.Warn().Err(err).Msg("could not write cache")
	}
	return entries, nil
}

func printHost(ctx context.Context, cfg *config.Config) error {
	provider, err := aws.New(ctx, cfg.Region)
	if err != nil {
		return err
	}
	dns, err := provider.LookupHost(ctx, flagHost)
	if err != nil {
		return err
	}
	fmt.Println(dns)
	return nil
}

// printEntries is the plain listing mode: sort, cap, then either one
// separator-joined line per entry or the full table with a count.
func printEntries(entries []hosts.Entry) error {
	show := flagShow
	if flagSortBy != "" {
		sorted, err := hosts.SortBy(entries, flagSortBy)
		if err != nil {
			return err
		}
		entries = sorted
		if len(flagOnly) == 0 && !contains(hosts.DefaultColumns, flagSortBy) && !contains(show, flagSortBy) {
			show = append(append([]string{}, show...), flagSortBy)
		}
	}
	if flagLimit > 0 && flagLimit < len(entries) {
		entries = entries[:flagLimit]
	}

	columns := render.Columns(show, flagOnly)
	if flagSep != "" {
		for i := range entries {
			line, err := render.Line(&entries[i], columns, flagSep)
			if err != nil {
				return err
			}
			fmt.Println(line)
		}
		return nil
	}

	out, err := render.Entries(entries, columns, false, render.TerminalWidth())
	if err != nil {
		return err
	}
	fmt.Println(out)
	fmt.Printf("%d matching entries.\n", len(entries))
	return nil
}

// expandPath resolves a leading ~/ against the home directory.
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
