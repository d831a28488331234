package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"jirarest/internal/cmdutils"
	"jirarest/internal/config"
	"jirarest/internal/metrics"
	"jirarest/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit
var cfgFile string

// Command annotations read by initConfig.
const (
	// annotationConfigOptional lets a command run when the --config file does not exist yet.
	annotationConfigOptional = "jirarest/config-optional"
	// annotationSkipValidation lets a command run with an invalid configuration.
	annotationSkipValidation = "jirarest/skip-validation"
)

var (
	clientMetrics = metrics.NewMetrics(nil)
	metricsServer *http.Server
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jirarest",
	Short: "Minimal Jira Cloud REST v3 client",
	Long: `jirarest lists projects and issue types, fetches issues and creates
issues on a Jira Cloud site using basic authentication with an API token.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopMetricsServer()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	err := rootCmd.Execute()
	stopMetricsServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cmdutils.Metrics = clientMetrics

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./jirarest.yaml or $HOME/jirarest.yaml)")
	flags.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	flags.Bool("strict", false, "Fail on non-2xx responses instead of printing the body")
	flags.StringP("output", "o", config.OutputTable, "Output format (table, json)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address until the command finishes (debugging aid)")

	bindFlags()
}

func bindFlags() {
	flags := rootCmd.PersistentFlags()
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindPFlag("jira.strict_status", flags.Lookup("strict"))
	viper.BindPFlag("output", flags.Lookup("output"))
	viper.BindPFlag("metrics.addr", flags.Lookup("metrics-addr"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig(cmd *cobra.Command) error {
	if err := config.Load(cfgFile); err != nil {
		if !(hasAnnotation(cmd, annotationConfigOptional) && config.IsConfigNotFound(err)) {
			return err
		}
	}

	if !hasAnnotation(cmd, annotationSkipValidation) {
		if err := config.ValidateConfig(); err != nil {
			return err
		}
	}

	settings := config.Current()
	logger := telemetry.InitLogger(settings.Verbose, settings.LogFile)
	if f := viper.ConfigFileUsed(); f != "" {
		logger.Debug("Using config file", "path", f)
	}

	if settings.MetricsAddr != "" && metricsServer == nil {
		srv, err := telemetry.StartMetricsServer(settings.MetricsAddr, clientMetrics.Handler())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to start metrics server: %v\n", err)
			return nil
		}
		metricsServer = srv
		slog.Info("Metrics server listening", "addr", srv.Addr)
	}
	return nil
}

// stopMetricsServer gracefully stops the metrics server, letting an in-flight scrape finish.
func stopMetricsServer() {
	if metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		slog.Warn("Metrics server shutdown failed", "error", err)
	}
	metricsServer = nil
}

func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[key] == "true" {
			return true
		}
	}
	return false
}

func outputFormat() string {
	if f := viper.GetString("output"); f != "" {
		return f
	}
	return config.OutputTable
}
