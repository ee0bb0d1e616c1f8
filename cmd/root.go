/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	analyzeCmd "github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/analyze"
	chartCmd "github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/chart"
	planCmd "github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/plan"
	serverCmd "github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/server"
	stintsCmd "github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/stints"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/cmd/util"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
	"github.com/mpapenbr/iracelog-tirestrategy/version"
)

const envPrefix = "TIRESTRAT"

var (
	cfgFile   string
	telemetry *config.Telemetry
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "tirestrat",
	Short:   "Tire degradation and pit strategy analysis for lap telemetry",
	Long:    ``,
	Version: version.FullVersion,

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := setupLogger()
		if err != nil {
			return err
		}
		log.ResetDefault(logger)
		cmd.SetContext(log.AddToContext(cmd.Context(), logger))
		setupTelemetry(cmd.Context())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if telemetry != nil {
			telemetry.Shutdown()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag definitions
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.tirestrat.yml)")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules to restrict log output (e.g. \"debug:report,server.* info:*\")")
	rootCmd.PersistentFlags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	rootCmd.PersistentFlags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (use stdout for console output)")

	rootCmd.PersistentFlags().Float64Var(&config.StrategyArgs.WearThreshold,
		"wear-threshold",
		config.DefaultWearThreshold,
		"average tire wear (percent) at which a pit stop is due")
	rootCmd.PersistentFlags().IntVar(&config.StrategyArgs.RaceLaps,
		"race-laps",
		config.DefaultRaceLaps,
		"race length in laps")
	rootCmd.PersistentFlags().DurationVar(&config.StrategyArgs.RaceDuration,
		"race-duration",
		0,
		"race length as duration, overrides race-laps using the average lap time")
	rootCmd.PersistentFlags().DurationVar(&config.StrategyArgs.PitTime,
		"pit-time",
		0,
		"time lost per pit stop (only used with race-duration)")
	rootCmd.PersistentFlags().IntVar(&config.StrategyArgs.RequiredPitstops,
		"pitstops",
		config.DefaultRequiredPitstops,
		"number of required pit stops")
	rootCmd.PersistentFlags().IntVar(&config.StrategyArgs.MinCompounds,
		"min-compounds",
		config.DefaultMinCompounds,
		"minimum number of different compounds to use")
	rootCmd.PersistentFlags().IntVar(&config.StrategyArgs.RecentLaps,
		"recent-laps",
		config.DefaultRecentLaps,
		"number of recent laps used for the immediate pit advice")

	// add commands here
	rootCmd.AddCommand(analyzeCmd.NewAnalyzeCmd())
	rootCmd.AddCommand(stintsCmd.NewStintsCmd())
	rootCmd.AddCommand(planCmd.NewPlanCmd())
	rootCmd.AddCommand(chartCmd.NewChartCmd())
	rootCmd.AddCommand(serverCmd.NewServerCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tirestrat" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tirestrat")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --wear-threshold to TIRESTRAT_WEAR_THRESHOLD
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}

func setupLogger() (*log.Logger, error) {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			util.ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			util.ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogFilter == "" {
		return logger, nil
	}
	filtered, err := logger.WithFilter(config.LogFilter)
	if err != nil {
		return nil, fmt.Errorf("invalid log filter %q: %w", config.LogFilter, err)
	}
	return filtered, nil
}

func setupTelemetry(ctx context.Context) {
	if !config.EnableTelemetry {
		return
	}
	log.Info("Enabling telemetry", log.String("endpoint", config.TelemetryEndpoint))
	var err error
	if telemetry, err = config.SetupTelemetry(ctx); err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return
	}
	err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
	if err != nil {
		log.Warn("Could not start runtime metrics", log.ErrorField(err))
	}
}
