package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "lsi [filters...]",
		Short: "List and connect to cloud instances",
		Long: `lsi - list cloud instances

Lists running instances from your cloud account, filters them by any
attribute, and connects to the survivors over ssh. Results are cached
locally so repeat invocations are instant.

Positional arguments are filters: a bare regex matches every attribute,
"attr:regex" matches one attribute, and "attr?" keeps entries where the
attribute is non-empty.`,
		Example: `  lsi                                # list everything
  lsi production                     # entries matching "production" anywhere
  lsi name:web -v name:canary        # scoped include and exclude
  lsi --ssh production -u admin      # pick an entry interactively and connect
  lsi production -c 'uptime' -y      # run a command on every match
  lsi --get /var/log/syslog --get 'logs/{name}' production`,
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE:    runRoot,
	}

	flagConfig      string
	flagLatest      bool
	flagRefreshOnly bool
	flagHost        string
	flagSSH         bool
	flagUsername    string
	flagIdentity    string
	flagExclude     []string
	flagCommand     string
	flagYes         bool
	flagSerial      bool
	flagProfile     string
	flagShow        []string
	flagOnly        []string
	flagSep         string
	flagSortBy      string
	flagLimit       int
	flagAttributes  bool
	flagGet         []string
	flagPut         []string
	flagTunnel      string
	flagDebug       bool
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`lsi {{.Version}}
`)

	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "Path to a config file")
	f.BoolVarP(&flagLatest, "latest", "l", false, "Bypass the cache and fetch fresh inventory")
	f.BoolVar(&flagRefreshOnly, "refresh-only", false, "Refresh the cache and exit")
	f.StringVar(&flagHost, "host", "", "Print the public DNS name of the named instance and exit")
	f.BoolVarP(&flagSSH, "ssh", "s", false, "Connect to a matching entry over ssh")
	f.StringVarP(&flagUsername, "username", "u", "", "Username for ssh connections")
	f.StringVarP(&flagIdentity, "identity-file", "i", "", "Identity file for ssh connections")
	f.StringArrayVarP(&flagExclude, "exclude", "v", nil, "Exclude entries matching this filter (repeatable)")
	f.StringVarP(&flagCommand, "command", "c", "", "Command to run on matching entries")
	f.BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
	f.BoolVar(&flagSerial, "serial", false, "Run commands one host at a time instead of in parallel")
	f.StringVarP(&flagProfile, "profile", "p", "", "Load this profile from the profile file")
	f.StringArrayVar(&flagShow, "show", nil, "Additional columns to display (repeatable)")
	f.StringArrayVar(&flagOnly, "only", nil, "Display exactly these columns (repeatable)")
	f.StringVar(&flagSep, "sep", "", "Print one line per entry with columns joined by this separator")
	f.StringVar(&flagSortBy, "sort-by", "name", "Sort entries by this attribute")
	f.IntVarP(&flagLimit, "limit", "L", 0, "Show at most this many entries")
	f.BoolVar(&flagAttributes, "attributes", false, "List the filterable attributes and exit")
	f.StringArrayVar(&flagGet, "get", nil, "Download a file: --get REMOTE --get LOCAL (LOCAL may use {attr} placeholders)")
	f.StringArrayVar(&flagPut, "put", nil, "Upload a file: --put LOCAL --put REMOTE")
	f.StringVarP(&flagTunnel, "tunnel", "t", "", "Tunnel ssh connections through this host")
	f.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}
