package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vpatelsj/comops/comclient"
	"github.com/vpatelsj/comops/internal/config"
	"github.com/vpatelsj/comops/internal/journal"
	"github.com/vpatelsj/comops/internal/workflow"
	"github.com/vpatelsj/comops/pkg/jobpoller"
)

// app carries the state shared by every subcommand of one invocation
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath   string
	endpoint     string
	clientID     string
	apiVersion   string
	tokenURL     string
	journalPath  string
	timeout      time.Duration
	pollInterval time.Duration
	maxWait      time.Duration
	debug        bool
	logJSON      bool

	cfg     *config.Config
	log     logr.Logger
	zap     *zap.Logger
	client  comclient.Client
	journal *journal.Journal
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, log: logr.Discard()}
}

// execute runs the command line in args. The journal and the logger are
// released on every exit path, including failed commands.
func (a *app) execute(ctx context.Context, args []string) error {
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "comctl",
		Short:         "Automate HPE Compute Ops Management",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	f.StringVar(&a.endpoint, "endpoint", "", "Connectivity endpoint, e.g. https://us-west2-api.compute.cloud.hpe.com (env "+config.EnvEndpoint+")")
	f.StringVar(&a.clientID, "client-id", "", "API client ID (env "+config.EnvClientID+")")
	f.StringVar(&a.apiVersion, "api-version", "", "API version (env "+config.EnvAPIVersion+")")
	f.StringVar(&a.tokenURL, "token-url", "", "OAuth2 token endpoint (env "+config.EnvTokenURL+")")
	f.StringVar(&a.journalPath, "journal", "", "Path of the SQLite job journal")
	f.DurationVar(&a.timeout, "timeout", 0, "Per-request timeout")
	f.DurationVar(&a.pollInterval, "poll-interval", 0, "Override both job polling intervals")
	f.DurationVar(&a.maxWait, "max-wait", 0, "Maximum time to wait for a job")
	f.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	f.BoolVar(&a.logJSON, "log-json", false, "Log in JSON")

	root.AddCommand(
		newServersCmd(a),
		newGroupsCmd(a),
		newBundlesCmd(a),
		newTemplatesCmd(a),
		newFiltersCmd(a),
		newActivitiesCmd(a),
		newJobsCmd(a),
		newSchedulesCmd(a),
		newFirmwareCmd(a),
		newReportCmd(a),
		newJournalCmd(a),
	)
	return root
}

// setup builds the logger and the configuration: file, then env, then flags.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	z, err := newZapLogger(a.debug, a.logJSON)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.zap = z
	a.log = zapr.NewLogger(z)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("endpoint", &cfg.Endpoint, a.endpoint)
	override("client-id", &cfg.ClientID, a.clientID)
	override("api-version", &cfg.APIVersion, a.apiVersion)
	override("token-url", &cfg.TokenURL, a.tokenURL)
	override("journal", &cfg.Journal, a.journalPath)
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("poll-interval") {
		cfg.Poll.StartInterval = a.pollInterval
		cfg.Poll.CompletionInterval = a.pollInterval
	}
	if flags.Changed("max-wait") {
		cfg.Poll.MaxWait = a.maxWait
	}

	a.cfg = cfg
	return nil
}

func newZapLogger(debug, json bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if json {
		zc = zap.NewProductionConfig()
	}
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// comClient validates the configuration and opens the session once.
func (a *app) comClient(ctx context.Context) (comclient.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	if err := a.cfg.PromptSecret(int(os.Stdin.Fd()), a.errOut); err != nil {
		return nil, err
	}
	if errs := a.cfg.Validate(); errs.HasErrors() {
		return nil, fmt.Errorf("invalid configuration: %w", errs)
	}

	client, err := comclient.NewHTTPClient(ctx, a.cfg.ClientConfig(), a.log)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// openJournal opens the configured journal. A nil journal means none is configured.
func (a *app) openJournal() (*journal.Journal, error) {
	if a.journal != nil || a.cfg.Journal == "" {
		return a.journal, nil
	}
	j, err := journal.Open(a.cfg.Journal)
	if err != nil {
		return nil, err
	}
	a.journal = j
	return j, nil
}

func (a *app) poller(client comclient.Client) *jobpoller.Poller {
	p := jobpoller.New(client, a.log)
	if d := a.cfg.Poll.StartInterval; d > 0 {
		p.Start.Interval = d
	}
	if d := a.cfg.Poll.CompletionInterval; d > 0 {
		p.Completion.Interval = d
	}
	if d := a.cfg.Poll.MaxWait; d > 0 {
		p.Start.MaxWait = d
		p.Completion.MaxWait = d
	}
	return p
}

// runner wires a workflow runner to the session and the journal.
func (a *app) runner(ctx context.Context) (*workflow.Runner, error) {
	client, err := a.comClient(ctx)
	if err != nil {
		return nil, err
	}
	r := workflow.NewRunner(client, a.poller(client), a.out, a.log)

	j, err := a.openJournal()
	if err != nil {
		return nil, err
	}
	if j != nil {
		r.Journal = j
	}
	return r, nil
}

func (a *app) close() {
	if a.journal != nil {
		a.journal.Close()
		a.journal = nil
	}
	if a.zap != nil {
		a.zap.Sync()
	}
}
