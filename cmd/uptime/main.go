package main

import (
	"flag"
	"os"

	"github.com/peterbourgon/ff"
	"github.com/peterbourgon/ff/ffcli"
)

var (
	appFlagSet        = flag.NewFlagSet("uptime", flag.ExitOnError)
	bootFlagSet       = flag.NewFlagSet("uptime boot", flag.ExitOnError)
	probeFlagSet      = flag.NewFlagSet("uptime probe", flag.ExitOnError)
	strategiesFlagSet = flag.NewFlagSet("uptime strategies", flag.ExitOnError)
	watchFlagSet      = flag.NewFlagSet("uptime watch", flag.ExitOnError)
	keygenFlagSet     = flag.NewFlagSet("uptime keygen", flag.ExitOnError)
	serveFlagSet      = flag.NewFlagSet("uptime serve", flag.ExitOnError)
	queryFlagSet      = flag.NewFlagSet("uptime query", flag.ExitOnError)

	configFile = appFlagSet.String("c", "", "configuration file path (default "+defaultConfigHint+" if present)")
	logLevel   = appFlagSet.String("log-level", "", "log level, overrides the configuration")
	strategies = appFlagSet.String("strategy", "", "comma separated strategies to try, in order")
	raw        = appFlagSet.Bool("raw", false, "print seconds only")

	keygenBaseURL = keygenFlagSet.String("base-url", "http://localhost:7123", "URL clients use to reach the server")
	keygenKeyID   = keygenFlagSet.String("kid", "uptime", "key ID of the generated key")
	serveListen   = serveFlagSet.String("listen", "", "address to listen on, overrides the configuration")
	queryTimeout  = queryFlagSet.Duration("timeout", defaultQueryTimeout, "how long to wait for the server")
)

func main() {
	app := &ffcli.Command{
		Usage:     "uptime [flags] [<subcommand> [args]]",
		ShortHelp: "Report how long the system has been running",
		FlagSet:   appFlagSet,
		Options:   []ff.Option{ff.WithEnvVarPrefix("UPTIME")},
		Exec:      show,
		Subcommands: []*ffcli.Command{
			{
				Name:      "boot",
				Usage:     "uptime boot",
				ShortHelp: "Print the time the system booted",
				FlagSet:   bootFlagSet,
				Exec:      boot,
			},
			{
				Name:      "probe",
				Usage:     "uptime probe",
				ShortHelp: "Compute uptime from the accounting database only",
				FlagSet:   probeFlagSet,
				Exec:      probeUtmpx,
			},
			{
				Name:      "strategies",
				Usage:     "uptime strategies",
				ShortHelp: "Try every configured strategy and print what each reports",
				FlagSet:   strategiesFlagSet,
				Exec:      listStrategies,
			},
			{
				Name:      "watch",
				Usage:     "uptime watch",
				ShortHelp: "Sample uptime on an interval and report reboots",
				FlagSet:   watchFlagSet,
				Exec:      watchUptime,
			},
			{
				Name:      "keygen",
				Usage:     "uptime keygen [flags] <server config> <client config>",
				ShortHelp: "Generate a shared key and write server and client configuration",
				FlagSet:   keygenFlagSet,
				Exec:      keygen,
			},
			{
				Name:      "serve",
				Usage:     "uptime serve [flags]",
				ShortHelp: "Answer uptime requests from peers",
				FlagSet:   serveFlagSet,
				Exec:      serve,
			},
			{
				Name:      "query",
				Usage:     "uptime query [flags] <client config> [<client config>...]",
				ShortHelp: "Ask peers for their uptime and name the longest running",
				FlagSet:   queryFlagSet,
				Exec:      query,
			},
		},
	}

	os.Exit(exitStatus(os.Stderr, app.Run(os.Args[1:])))
}
