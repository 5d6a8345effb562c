package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/studiowebux/docportal/internal/cli"
	"github.com/studiowebux/docportal/internal/tui"
	"github.com/studiowebux/docportal/internal/version"
)

var (
	appVersion = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagStore     string
	flagEnv       string
	flagEnvFile   string
)

// Command flags
var (
	flagSearch   string
	flagOutput   string
	flagRaw      bool
	flagLangs    []string
	flagNoColor  bool
	flagHeaders  []string
	flagQuery    []string
	flagPath     []string
	flagBody     string
	flagFilter   string
	flagJMESPath string
	flagFull     bool
	flagSave     string
	flagPhone    string
	flagOTP      string
	flagLabel    string
	flagLimit    int
	flagEndpoint string
	flagActive   bool
	flagCheck    bool
)

// withApp opens the application for the duration of fn
func withApp(fn func(app *cli.App) error) error {
	app, err := cli.Open(cli.Options{
		ConfigPath: flagConfig,
		LogLevel:   flagLogLevel,
		LogFormat:  flagLogFormat,
		Store:      flagStore,
	})
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func source(args []string) cli.Source {
	src := cli.Source{Env: flagEnv, EnvFile: flagEnvFile}
	if len(args) > 0 {
		src.File = args[0]
	}
	return src
}

var rootCmd = &cobra.Command{
	Use:   "docportal [file]",
	Short: "docportal - API reference docs, code samples and try-it-out in the terminal",
	Long: `docportal renders API reference documentation from an Insomnia-style YAML
export, generates code samples in twelve languages, and runs live requests.

It also manages your developer portal account: OTP login, API client
credentials, IP whitelist and webhook configuration.

Run without a subcommand to open the reader.

Examples:
  docportal api.yaml                         # Open the reader
  docportal endpoints api.yaml --search user # List matching endpoints
  docportal samples users-get-user api.yaml  # Code samples
  docportal try users-get-user api.yaml -P id=42
  docportal login                            # Phone/OTP login`,
	Version: appVersion,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Open the interactive documentation reader",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	return withApp(func(app *cli.App) error {
		file := ""
		if len(args) > 0 {
			file = args[0]
		}
		return tui.Run(cmd.Context(), app, tui.Options{File: file, Env: flagEnv, EnvFile: flagEnvFile})
	})
}

var endpointsCmd = &cobra.Command{
	Use:     "endpoints [file]",
	Aliases: []string{"ls"},
	Short:   "List documented endpoints",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.ListEndpoints(cmd.Context(), cli.ListOptions{
				Source: source(args),
				Search: flagSearch,
				Format: flagOutput,
			})
		})
	},
}

var navCmd = &cobra.Command{
	Use:   "nav [file]",
	Short: "Print the navigation tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.PrintNav(cmd.Context(), source(args), flagSearch)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id> [file]",
	Short: "Show an endpoint's reference",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.ShowEndpoint(cmd.Context(), source(args[1:]), args[0], flagRaw)
		})
	},
}

var samplesCmd = &cobra.Command{
	Use:   "samples <id> [file]",
	Short: "Print code samples for an endpoint",
	Long: `Print code samples for an endpoint.

Languages: curl, javascript, javascriptAxios, typescript, typescriptAxios,
python, csharp, go, java, php, ruby, swift (aliases: fetch, axios, ts, tsAxios).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.PrintSamples(cmd.Context(), cli.SampleOptions{
				Source:    source(args[1:]),
				ID:        args[0],
				Languages: flagLangs,
				Highlight: !flagNoColor,
			})
		})
	},
}

var tryCmd = &cobra.Command{
	Use:   "try <id> [file]",
	Short: "Send an endpoint's request",
	Long: `Send an endpoint's request with optional overrides.

When the API rejects your IP address and client credentials are saved, a
fresh API token is minted and the request is retried once.

Examples:
  docportal try users-get-user -P id=42
  docportal try orders-create -H X-Trace=1 --body '{"sku":"a"}'
  docportal try orders-list -q status=open --query '[].id'
  docportal try orders-list --query '$(jq length)'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Try(cmd.Context(), cli.TryOptions{
				Source:       source(args[1:]),
				ID:           args[0],
				Headers:      flagHeaders,
				QueryParams:  flagQuery,
				PathParams:   flagPath,
				BodyOverride: flagBody,
				Filter:       flagFilter,
				Query:        flagJMESPath,
				OutputFormat: flagOutput,
				ShowFull:     flagFull,
				SavePath:     flagSave,
			})
		})
	},
}

var envsCmd = &cobra.Command{
	Use:   "envs [file]",
	Short: "List environments",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.PrintEnvironments(cmd.Context(), source(args))
		})
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage the active environment",
}

var envUseCmd = &cobra.Command{
	Use:   "use [name] [file]",
	Short: "Select the environment used by other commands",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
			args = args[1:]
		}
		return withApp(func(app *cli.App) error {
			return app.UseEnvironment(cmd.Context(), source(args), name)
		})
	},
}

var publishedCmd = &cobra.Command{
	Use:   "published [domain]",
	Short: "List documentation hosted on the portal",
	Long: `List documentation hosted on the portal. Pass a path from this list as
docs_path in the config file to read it without a local export.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain := ""
		if len(args) > 0 {
			domain = args[0]
		}
		return withApp(func(app *cli.App) error {
			return app.ListPublished(cmd.Context(), domain, flagOutput)
		})
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint [file]",
	Short: "Validate a collection export",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Lint(cmd.Context(), source(args).File)
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with your phone number and a one-time password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Login(cmd.Context(), cli.LoginOptions{Phone: flagPhone, OTP: flagOTP})
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the portal session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Logout(cmd.Context())
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session, environment and saved credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Status(cmd.Context())
		})
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API client credentials",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved client credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.ListKeys(cmd.Context())
		})
	},
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new client id and secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.CreateKey(cmd.Context(), flagLabel)
		})
	},
}

var keysAddCmd = &cobra.Command{
	Use:   "add <client-id> <client-secret>",
	Short: "Save an existing client id and secret",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.AddKey(args[0], args[1], flagLabel)
		})
	},
}

var keysRemoveCmd = &cobra.Command{
	Use:   "remove <client-id>",
	Short: "Forget a saved client credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.RemoveKey(args[0])
		})
	},
}

var keysTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API bearer token from the latest saved credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Token(cmd.Context())
		})
	},
}

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage the IP addresses allowed to call the API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Whitelist(cmd.Context())
		})
	},
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted IP addresses",
	Args:  cobra.NoArgs,
	RunE:  whitelistCmd.RunE,
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add [ip]",
	Short: "Whitelist an IP address (defaults to your public IP)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip := ""
		if len(args) > 0 {
			ip = args[0]
		}
		return withApp(func(app *cli.App) error {
			return app.WhitelistAdd(cmd.Context(), ip)
		})
	},
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "remove <ip>",
	Short: "Remove an IP address from the whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.WhitelistRemove(cmd.Context(), args[0])
		})
	},
}

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage webhook delivery",
}

var webhookGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the webhook configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.ShowWebhook(cmd.Context())
		})
	},
}

var webhookSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Set the webhook URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.SetWebhook(cmd.Context(), args[0], flagActive)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent try-it-out executions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.PrintHistory(cli.HistoryOptions{Limit: flagLimit, EndpointID: flagEndpoint, Format: flagOutput})
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.ClearHistory()
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and optionally check for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "docportal %s\n", appVersion)
		if !flagCheck {
			return nil
		}

		update, err := version.CheckForUpdate(cmd.Context(), "", appVersion)
		if err != nil {
			return err
		}
		if update.Available {
			fmt.Fprintf(cmd.OutOrStdout(), "A newer version is available: %s\n%s\n", update.Latest, update.URL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "You are on the latest version")
		}
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize history per endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.PrintStats(cli.StatsOptions{Environment: flagEnv, Format: flagOutput})
		})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.docportal/config.yaml)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format (text/json)")
	pf.StringVar(&flagStore, "store", "", "State backend (file/sqlite/memory)")
	pf.StringVarP(&flagEnv, "env", "e", "", "Environment to resolve templates with")
	pf.StringVar(&flagEnvFile, "env-file", "", "Variable overrides (.env, .json, .jsonc, .yaml)")

	endpointsCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Filter by title, method or URL")
	endpointsCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")
	publishedCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")
	navCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Filter by title or method")

	showCmd.Flags().BoolVar(&flagRaw, "raw", false, "Print markdown without rendering")

	samplesCmd.Flags().StringSliceVarP(&flagLangs, "lang", "l", nil, "Languages to print (default all)")
	samplesCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable syntax highlighting")

	tryCmd.Flags().StringArrayVarP(&flagHeaders, "header", "H", nil, "Set header (key=value), can be repeated")
	tryCmd.Flags().StringArrayVarP(&flagQuery, "query-param", "q", nil, "Set query parameter (key=value), can be repeated")
	tryCmd.Flags().StringArrayVarP(&flagPath, "path-param", "P", nil, "Set path parameter (key=value), can be repeated")
	tryCmd.Flags().StringVarP(&flagBody, "body", "b", "", "Override request body")
	tryCmd.Flags().StringVar(&flagFilter, "filter", "", "JMESPath filter applied to the response")
	tryCmd.Flags().StringVar(&flagJMESPath, "query", "", "JMESPath query or $(command) applied to the response")
	tryCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml/body)")
	tryCmd.Flags().BoolVarP(&flagFull, "full", "f", false, "Show URL and response headers")
	tryCmd.Flags().StringVarP(&flagSave, "save", "s", "", "Save response to file")

	loginCmd.Flags().StringVar(&flagPhone, "phone", "", "Phone number with country code")
	loginCmd.Flags().StringVar(&flagOTP, "otp", "", "One-time password (prompted when omitted)")

	keysCreateCmd.Flags().StringVar(&flagLabel, "label", "", "Label for the saved credential")
	keysAddCmd.Flags().StringVar(&flagLabel, "label", "", "Label for the saved credential")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check GitHub for a newer release")

	webhookSetCmd.Flags().BoolVar(&flagActive, "active", true, "Enable webhook delivery")

	historyCmd.PersistentFlags().IntVarP(&flagLimit, "limit", "n", 20, "Number of entries (0 for all)")
	historyCmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Only show entries for this endpoint id")
	historyCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")
	historyStatsCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")

	envCmd.AddCommand(envUseCmd)
	keysCmd.AddCommand(keysListCmd, keysCreateCmd, keysAddCmd, keysRemoveCmd, keysTokenCmd)
	whitelistCmd.AddCommand(whitelistListCmd, whitelistAddCmd, whitelistRemoveCmd)
	webhookCmd.AddCommand(webhookGetCmd, webhookSetCmd)
	historyCmd.AddCommand(historyClearCmd, historyStatsCmd)

	rootCmd.AddCommand(tuiCmd, endpointsCmd, navCmd, showCmd, samplesCmd, tryCmd, envsCmd, envCmd,
		publishedCmd, lintCmd, loginCmd, logoutCmd, statusCmd, keysCmd, whitelistCmd, webhookCmd, historyCmd, versionCmd)
}
