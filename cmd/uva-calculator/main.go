package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/uva-calculator/internal/calculator"
	"github.com/iwvelando/uva-calculator/internal/config"
	"github.com/iwvelando/uva-calculator/internal/logging"
	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/exchange"
	"github.com/iwvelando/uva-calculator/pkg/output"
	"github.com/iwvelando/uva-calculator/pkg/validation"
	"go.uber.org/zap"
)

// overrideFlags collects repeated -override category=percent flags.
type overrideFlags map[string]string

func (o overrideFlags) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (o overrideFlags) Set(value string) error {
	category, pct, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected category=percent, got %q", value)
	}
	o[strings.TrimSpace(category)] = pct
	return nil
}

// loadConfiguration falls back to built-in defaults when the default config
// file is absent. An explicitly named file must exist.
func loadConfiguration(path string) (*config.Configuration, error) {
	if path == constants.DefaultConfigFile {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.DefaultConfiguration(), nil
		}
	}
	return config.LoadConfiguration(path)
}

func main() {
	overrides := overrideFlags{}

	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	property := flag.String("property", "", "property value in USD")
	principal := flag.String("principal", "", "loan principal in ARS")
	term := flag.String("term", "", "loan term in years")
	rate := flag.String("rate", "", "nominal annual interest rate in percent")
	jurisdiction := flag.String("jurisdiction", "CABA", "jurisdiction code for closing costs")
	schedule := flag.Bool("schedule", false, "include the yearly amortization schedule")
	simulated := flag.Float64("simulated", 0, "simulated ARS/USD rate for what-if exploration")
	flag.Var(overrides, "override", "closing cost override as category=percent (repeatable)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	offline := flag.Bool("offline", false, "skip network rate sources and use the cache or fallback rate")
	flag.Parse()

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	fields := map[string]string{
		calculator.FieldPropertyValue: *property,
		calculator.FieldPrincipal:     *principal,
		calculator.FieldTerm:          *term,
		calculator.FieldRate:          *rate,
		calculator.FieldJurisdiction:  *jurisdiction,
		calculator.FieldSchedule:      strconv.FormatBool(*schedule),
	}
	for category, pct := range overrides {
		fields[calculator.FieldOverridePrefix+category] = pct
	}
	inputs, err := calculator.ParseInputs(fields)
	if err != nil {
		logger.Fatal("invalid input",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	calc, err := calculator.FromConfiguration(logger, conf)
	if err != nil {
		logger.Fatal("failed to initialize calculator",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	provider, closer, err := conf.NewRateProvider(logger, *offline)
	if err != nil {
		logger.Fatal("failed to initialize rate provider",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warn("failed to close rate cache",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), conf.ExchangeRate.Timeout*3)
	rates := exchange.StateFromQuote(provider.OfficialRate(ctx))
	cancel()
	if *simulated > 0 {
		rates.SetSimulatedRate(exchange.ClampSimulatedRate(*simulated))
	}

	result := calc.Recompute(inputs, rates)

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, result)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(os.Stdout, result); err != nil {
			logger.Fatal("failed to write output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
