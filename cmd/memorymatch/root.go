package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"memorymatch/config"
	"memorymatch/localcache"
	"memorymatch/recorder"
	sdk "memorymatch/sdk/go"
)

type globalFlags struct {
	prefsPath string
	apiURL    string
	cachePath string
	offline   bool
	noColor   bool
	verbose   bool
}

// env is the resolved runtime shared by subcommands.
type env struct {
	prefsPath string
	prefs     Preferences
	client    config.ClientConfig
	logger    *slog.Logger
	cache     *localcache.Cache
	recorder  *recorder.Recorder
	in        io.Reader
	out       io.Writer
	width     int
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "memorymatch",
		Short: "Memory match card game with a shared leaderboard",
		Long: `memorymatch is a terminal memory game: flip two cards per move and find
every pair as fast as you can. Finished games are posted to the leaderboard
server and kept in a local cache for offline play.

The server URL comes from --api-url, MEMORYMATCH_API_URL or the preferences
file at $XDG_CONFIG_HOME/memorymatch/config.toml.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.prefsPath, "config", defaultPrefsPath(), "preferences file")
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "leaderboard API base URL")
	root.PersistentFlags().StringVar(&flags.cachePath, "cache", "", "local leaderboard cache file")
	root.PersistentFlags().BoolVar(&flags.offline, "offline", false, "do not contact the leaderboard server")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log network fallbacks")

	root.AddCommand(newPlayCmd(flags), newLeaderboardCmd(flags), newCacheCmd(flags))
	return root
}

// setup resolves preferences, config and collaborators for a command.
func setup(cmd *cobra.Command, flags *globalFlags) (*env, error) {
	prefs, err := loadPreferences(flags.prefsPath)
	if err != nil {
		return nil, err
	}
	client, err := clientConfig(prefs)
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		client.APIURL = flags.apiURL
	}
	if flags.offline {
		client.APIURL = ""
	}
	if flags.cachePath != "" {
		client.CachePath = flags.cachePath
	}

	level := slog.LevelError
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	e := &env{
		prefsPath: flags.prefsPath,
		prefs:     prefs,
		client:    client,
		logger:    logger,
		cache:     localcache.New(client.CachePath, logger),
		in:        cmd.InOrStdin(),
		out:       cmd.OutOrStdout(),
		width:     80,
	}

	color.NoColor = flags.noColor || prefs.NoColor || !isTerminal(e.out)
	if f, ok := e.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			e.width = w
		}
	}

	var remote recorder.Remote
	if client.APIURL != "" {
		opts := []sdk.Option{}
		if client.Timeout > 0 {
			opts = append(opts, sdk.WithTimeout(client.Timeout))
		}
		c, err := sdk.NewClient(client.APIURL, opts...)
		if err != nil {
			return nil, err
		}
		remote = c
	}
	e.recorder = recorder.New(remote, e.cache, recorder.WithLogger(logger))
	return e, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
