// quasselc opens one session against a Quassel core and logs
// established-session traffic.
//
// Usage:
//
//	quasselc -host core.example.org -port 4242 -user jdoe
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/quasselc/quasselc/internal/quassel"
	"github.com/quasselc/quasselc/internal/wire"
)

// loggingHandlers logs every Established-state event at debug level and
// every lifecycle event at info/warn/error.
func loggingHandlers(log logrus.FieldLogger) quassel.Handlers {
	return quassel.Handlers{
		OnEstablished: func(state quassel.SessionState) {
			log.WithFields(logrus.Fields{
				"identities": len(state.Identities),
				"networks":   len(state.NetworkIDs),
				"buffers":    len(state.BufferInfos),
			}).Info("session established")
		},
		OnSync: func(class string, object *string, function string, args []wire.Variant) {
			log.WithFields(logrus.Fields{"class": class, "object": object, "fn": function}).Debug("sync")
		},
		OnRPC: func(signature string, args []wire.Variant) {
			log.WithField("signature", signature).Debug("rpc")
		},
		OnInitRequest: func(class, object string) {
			log.WithFields(logrus.Fields{"class": class, "object": object}).Debug("init request")
		},
		OnInitData: func(class, object string, state map[string]wire.Variant) {
			log.WithFields(logrus.Fields{"class": class, "object": object, "keys": len(state)}).Debug("init data")
		},
		OnLoginRejected: func() {
			log.Error("login rejected")
		},
		OnConnectionLost: func(reason error) {
			log.WithError(reason).Warn("connection lost")
		},
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "quasselc"
	app.Usage = "connect to a Quassel core and log session traffic"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "host", Usage: "core hostname", Value: "localhost"},
		cli.IntFlag{Name: "port", Usage: "core port", Value: 4242},
		cli.StringFlag{Name: "user", Usage: "login user"},
		cli.StringFlag{Name: "password", Usage: "login password (prompted securely if omitted)"},
		cli.BoolFlag{Name: "tls", Usage: "use TLS if the core offers it"},
		cli.BoolFlag{Name: "insecure-skip-verify", Usage: "skip TLS certificate verification"},
		cli.BoolFlag{Name: "compress", Usage: "advertise zlib compression"},
		cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		cli.StringFlag{Name: "metrics-addr", Usage: "address to serve Prometheus metrics on (empty disables)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "quasselc:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := logrus.New()
	if c.Bool("debug") {
		log.SetLevel(logrus.DebugLevel)
	}

	user := c.String("user")
	if user == "" {
		return cli.NewExitError("quasselc: -user is required", 2)
	}
	password := c.String("password")
	if password == "" {
		prompted, err := promptPassword()
		if err != nil {
			return fmt.Errorf("quasselc: reading password: %w", err)
		}
		password = prompted
	}

	var tlsConfig *tls.Config
	if c.Bool("tls") {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS10,
			InsecureSkipVerify: c.Bool("insecure-skip-verify"),
		}
	}

	var registerer prometheus.Registerer
	if addr := c.String("metrics-addr"); addr != "" {
		registerer = prometheus.DefaultRegisterer
		go serveMetrics(addr, log)
	}

	cfg := quassel.Config{
		Host:              c.String("host"),
		Port:              c.Int("port"),
		User:              user,
		Password:          password,
		TLSConfig:         tlsConfig,
		Compression:       c.Bool("compress"),
		Logger:            log,
		MetricsRegisterer: registerer,
	}

	session, err := quassel.NewSession(cfg, loggingHandlers(log))
	if err != nil {
		return fmt.Errorf("quasselc: building session: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down")
		cancel()
		_ = session.Close()
	}()

	if err := session.Connect(ctx); err != nil {
		return fmt.Errorf("quasselc: %w", err)
	}
	if err := session.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("quasselc: %w", err)
	}
	return nil
}

func serveMetrics(addr string, log logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Infof("serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Warn("metrics server stopped")
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
