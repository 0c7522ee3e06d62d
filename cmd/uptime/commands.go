package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/erikh/uptime/pkg/api"
	"github.com/erikh/uptime/pkg/client"
	"github.com/erikh/uptime/pkg/config"
	"github.com/erikh/uptime/pkg/election"
	"github.com/erikh/uptime/pkg/launcher"
	"github.com/erikh/uptime/pkg/probe"
	"github.com/erikh/uptime/pkg/uptime"
	"github.com/erikh/uptime/pkg/utmpx"
	"github.com/erikh/uptime/pkg/watch"
	"github.com/ghodss/yaml"
	"github.com/sirupsen/logrus"
)

const (
	defaultConfigHint   = config.DefaultPath
	defaultQueryTimeout = 5 * time.Second
	shutdownWait        = 5 * time.Second
)

var ErrUnavailable = errors.New("Unable to determine uptime.")

// exitStatus writes err, if any, to w and returns the process exit code.
func exitStatus(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	fmt.Fprintln(w, err)
	return 1
}

// loadConfig reads -c, or the default path if it exists, and applies the
// command line overrides.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg := config.Default()

	filename := *configFile
	if filename == "" {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			filename = config.DefaultPath
		}
	}

	if filename != "" {
		var err error
		cfg, err = config.Load(filename)
		if err != nil {
			return nil, nil, err
		}
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if *strategies != "" {
		cfg.Strategies = strings.Split(*strategies, ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)

	// validated above
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)

	return cfg, log, nil
}

func chain() (*config.Config, *uptime.Chain, *logrus.Logger, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	c, err := cfg.Chain(log)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, c, log, nil
}

func writeUptime(w io.Writer, up float64, raw bool) {
	if raw {
		fmt.Fprintf(w, "%.6f\n", up)
		return
	}

	fmt.Fprintf(w, "Uptime: %s.\n", uptime.Humanize(up))
}

// reportUptime writes the uptime from the first strategy in c that answers
// and returns that strategy's name.
func reportUptime(w io.Writer, c *uptime.Chain, raw bool) (string, error) {
	up, strategy, ok := c.Uptime()
	if !ok {
		return "", ErrUnavailable
	}

	writeUptime(w, up, raw)
	return strategy, nil
}

func reportBoot(w io.Writer, c *uptime.Chain, raw bool) error {
	bt, strategy, ok := c.BootTime()
	if !ok {
		return ErrUnavailable
	}

	if raw {
		fmt.Fprintln(w, bt.Unix())
		return nil
	}

	fmt.Fprintf(w, "Booted: %s (%s)\n", bt.Format(time.RFC3339), strategy)
	return nil
}

func reportProbe(w io.Writer, p *probe.Probe, raw bool) error {
	up, ok := p.Uptime()
	if !ok {
		return fmt.Errorf("%w (no usable boot record in the accounting database)", ErrUnavailable)
	}

	writeUptime(w, up, raw)
	return nil
}

func reportStrategies(w io.Writer, c *uptime.Chain) {
	for _, s := range c.Strategies {
		up, ok := s.Uptime()
		if !ok {
			fmt.Fprintf(w, "%-10s unavailable\n", s.Name())
			continue
		}

		fmt.Fprintf(w, "%-10s %.6f (%s)\n", s.Name(), up, uptime.Clock(up))
	}
}

func show(args []string) error {
	_, c, log, err := chain()
	if err != nil {
		return err
	}

	strategy, err := reportUptime(os.Stdout, c, *raw)
	if err != nil {
		return err
	}

	log.WithField("strategy", strategy).Debug("determined uptime")
	return nil
}

func boot(args []string) error {
	_, c, _, err := chain()
	if err != nil {
		return err
	}

	return reportBoot(os.Stdout, c, *raw)
}

func probeUtmpx(args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	p := probe.New(log)
	p.Boot = utmpx.Database{Path: cfg.UtmpPath}

	return reportProbe(os.Stdout, p, *raw)
}

func listStrategies(args []string) error {
	_, c, _, err := chain()
	if err != nil {
		return err
	}

	reportStrategies(os.Stdout, c)
	return nil
}

func watchUptime(args []string) error {
	cfg, c, log, err := chain()
	if err != nil {
		return err
	}

	w := watch.Init(c, time.Duration(cfg.Watch.Interval))
	w.Log = log
	w.OnSample = func(s watch.Sample) {
		if s.Available {
			fmt.Printf("%s %s %s\n", s.Time.Format(time.RFC3339), uptime.Clock(s.Uptime), s.Strategy)
		}
	}
	w.OnReboot = func(previous, current watch.Sample) {
		fmt.Printf("%s rebooted, previous boot at %s, now booted at %s\n",
			current.Time.Format(time.RFC3339),
			previous.BootTime().Format(time.RFC3339),
			current.BootTime().Format(time.RFC3339),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w.Start()
	<-ctx.Done()
	w.Shutdown()

	return nil
}

func keygen(args []string) error {
	if len(args) != 2 {
		return errors.New("keygen needs a server configuration and a client configuration filename")
	}

	return writeKeys(args[0], args[1], *keygenKeyID, *keygenBaseURL)
}

// writeKeys generates a shared key, stores it in the server configuration
// (keeping any settings already there) and writes a client configuration for
// baseURL. Both files are only readable by their owner.
func writeKeys(serverFile, clientFile, kid, baseURL string) error {
	key, err := api.MakeKey(kid, api.DefaultKeyAlgorithm)
	if err != nil {
		return fmt.Errorf("Could not generate key: %w", err)
	}

	cfg := config.Default()
	if _, err := os.Stat(serverFile); err == nil {
		cfg, err = config.Load(serverFile)
		if err != nil {
			return err
		}
	}

	cfg.AuthKey = key
	if err := cfg.Save(serverFile); err != nil {
		return err
	}

	byt, err := yaml.Marshal(&client.Client{AuthKey: key, BaseURL: baseURL})
	if err != nil {
		return err
	}

	return config.ToDisk(clientFile, config.SecretPerm, func(w io.Writer) error {
		_, err := w.Write(byt)
		return err
	})
}

func serve(args []string) error {
	cfg, c, log, err := chain()
	if err != nil {
		return err
	}

	s := &launcher.Server{}
	if err := s.Launch(*serveListen, cfg, c, log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	return s.Shutdown(shutdownCtx)
}

func printResponse(name string, resp *api.UptimeResponse) {
	if *raw {
		fmt.Printf("%s %.6f\n", name, resp.Uptime)
		return
	}

	fmt.Printf("%s (%s): Uptime: %s. (%s, booted %s)\n", name, resp.Hostname, uptime.Humanize(resp.Uptime), resp.Strategy, resp.BootTime.Local().Format(time.RFC3339))
}

func query(args []string) error {
	if len(args) == 0 {
		return errors.New("query needs at least one client configuration filename")
	}

	_, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *queryTimeout)
	defer cancel()

	if len(args) == 1 {
		cl, err := client.Load(args[0])
		if err != nil {
			return err
		}

		resp, err := cl.Uptime(ctx)
		if err != nil {
			return err
		}

		if !resp.Available {
			return fmt.Errorf("%s: %w", resp.Hostname, ErrUnavailable)
		}

		printResponse(args[0], resp)
		return nil
	}

	peers := map[string]election.Peer{}
	for _, filename := range args {
		cl, err := client.Load(filename)
		if err != nil {
			return err
		}

		peers[filename] = cl
	}

	e := election.NewElection(peers, log)
	oldest, _, err := e.Vote(ctx)
	if err != nil {
		return err
	}

	uptimes := e.Uptimes()
	for _, filename := range args {
		if resp, ok := uptimes[filename]; ok {
			printResponse(filename, resp)
		}
	}

	fmt.Printf("Longest running: %s\n", oldest)
	return nil
}
