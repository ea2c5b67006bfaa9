// Command drugguard is a terminal client for the DrugGuard Ghana API: drug
// verification and reporting for citizens, and the registry, report review
// and analytics for FDA staff.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Joeboy77/drug-guard-fe/drugguard"
	"github.com/Joeboy77/drug-guard-fe/internal/config"
	"github.com/Joeboy77/drug-guard-fe/internal/metrics"
	"github.com/Joeboy77/drug-guard-fe/internal/output"
	"github.com/Joeboy77/drug-guard-fe/logger"
	"github.com/Joeboy77/drug-guard-fe/session"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "drugguard"

// env is what every command needs, built once the global flags are parsed.
type env struct {
	cfg     *config.Config
	client  *drugguard.Client
	out     *output.Printer
	metrics *metrics.ClientMetrics
}

func newEnv(c *cli.Context, stdout io.Writer) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if u := c.String("base-url"); u != "" {
		cfg.BaseURL = u
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	logger.InitGlobalLogger(cfg.LoggerOptions())

	e := &env{cfg: cfg, out: output.New(stdout, c.Bool("json"))}

	cc := cfg.ClientConfig()
	if c.Bool("metrics") {
		e.metrics = metrics.New()
		cc.WrapTransport = e.metrics.Wrap
	}
	sess := session.New(session.NewFileStore(cfg.TokenDir))
	e.client = drugguard.NewClient(cfg.BaseURL, sess, cc)

	return e, nil
}

// command wraps a command body in its own root span.
func (a *app) command(name string, fn func(ctx context.Context, e *env, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, span := otel.Tracer(tracerName).Start(c.Context, name)
		defer span.End()
		span.SetAttributes(attribute.String("drugguard.base_url", a.env.cfg.BaseURL))

		err := fn(ctx, a.env, c)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, drugguard.ErrorMessage(err))
		}

		return err
	}
}

type app struct {
	stdout io.Writer
	env    *env
}

func newApp(stdout io.Writer) *cli.App {
	a := &app{stdout: stdout}

	return &cli.App{
		Name:    "drugguard",
		Usage:   "verify drugs and manage the DrugGuard Ghana registry",
		Suggest: true,
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Usage:     "read settings from this YAML file",
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "API base URL, overriding the configuration",
				EnvVars: []string{"DRUGGUARD_BASE_URL"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "print request counts when the command finishes",
			},
		},
		Before: func(c *cli.Context) error {
			e, err := newEnv(c, a.stdout)
			if err != nil {
				return err
			}
			a.env = e

			return nil
		},
		After: func(c *cli.Context) error {
			if a.env == nil || a.env.metrics == nil {
				return nil
			}
			samples, err := a.env.metrics.Snapshot()
			if err != nil {
				return err
			}

			return a.env.out.Metrics(samples)
		},
		Commands: []*cli.Command{
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.verifyCommand(),
			a.searchCommand(),
			a.reportCommand(),
			a.reportsCommand(),
			a.drugsCommand(),
			a.analyticsCommand(),
			a.adminCommand(),
			a.voiceCommand(),
		},
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	return newApp(stdout).RunContext(ctx, args)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, os.Stdout); err != nil {
		stop()
		logger.FatalContext(ctx, "Command failed", slog.String("error", drugguard.ErrorMessage(err)))
	}
}
