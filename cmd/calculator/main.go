package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/stateforward/go-fsm"
	"github.com/stateforward/go-fsm/calculator"
	"github.com/stateforward/go-fsm/pkg/plantuml"
	"github.com/stateforward/go-fsm/pkg/telemetry"
)

var errUsage = errors.New("no expression given")

func main() {
	var (
		debug   = flag.Bool("debug", false, "Log state machine diagnostics (overrides FSM_DEBUG)")
		diagram = flag.Bool("diagram", false, "Print the calculator state machine as PlantUML and exit")
		file    = flag.String("file", "", "Sum the words of a file such as \"1 + 2 - 3\" instead of evaluating arguments")
		quiet   = flag.Bool("quiet", false, "Only print the result")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: calculator [flags] 123.4 + 56.7")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *debug {
		cfg.Debug = true
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, logger, options{diagram: *diagram, file: *file, quiet: *quiet, args: flag.Args()})
	stop()
	if errors.Is(err, errUsage) {
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

type options struct {
	diagram bool
	file    string
	quiet   bool
	args    []string
}

func run(ctx context.Context, cfg Config, logger *slog.Logger, opts options) error {
	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", opts.file, err)
		}
		defer f.Close()
		result, err := calculator.Scan(f)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", opts.file, err)
		}
		fmt.Printf("Result: %s\n", strconv.FormatFloat(result, 'f', -1, 64))
		return nil
	}

	machineOptions := []fsm.Option{
		fsm.WithDebug(cfg.Debug),
		fsm.WithMaxAutoTransitions(cfg.MaxAutoChained),
	}
	if cfg.Trace {
		shutdown, err := setupTracing(os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("failed to flush spans", slog.Any("error", err))
			}
		}()
		machineOptions = append(machineOptions, fsm.WithTrace(telemetry.NewTrace(otel.Tracer(tracerName))))
	}
	calculatorOptions := []calculator.Option{
		calculator.WithLogger(logger),
		calculator.WithMachineOptions(machineOptions...),
	}
	if !opts.quiet {
		calculatorOptions = append(calculatorOptions, calculator.WithOutput(os.Stdout))
	}
	calc, err := calculator.New(ctx, calculatorOptions...)
	if err != nil {
		return fmt.Errorf("failed to create calculator: %w", err)
	}

	if opts.diagram {
		if err := plantuml.Generate(os.Stdout, calc.Machine()); err != nil {
			return fmt.Errorf("failed to write diagram: %w", err)
		}
		return nil
	}

	if len(opts.args) == 0 {
		return errUsage
	}
	result, err := calc.Evaluate(strings.Join(opts.args, " "))
	if err != nil {
		return fmt.Errorf("failed to evaluate: %w", err)
	}
	fmt.Printf("Result: %s\n", strconv.FormatFloat(result, 'f', -1, 64))
	return nil
}
