package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/freshsense/freshsense/cli/internal/client"
	"github.com/freshsense/freshsense/pkg/types"
)

const usage = `spoilctl talks to a freshsense server.

Usage:
  spoilctl [global flags] <command> [flags]

Commands:
  analyze   classify one reading set (-nh3 -h2s -tma -dms)
  health    print the server health payload
  sensors   print the sensor catalogue
  dataset   classify every dataset row and report agreement with its label
  stats     print completed analyses by food status from /metrics
  watch     print live analysis events until interrupted

Global flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("spoilctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	server := global.String("server", "http://localhost:5000", "freshsense server URL")
	keyEnv := global.String("api-key-env", "FRESHSENSE_API_KEY", "environment variable holding the API key")
	header := global.String("header", client.DefaultHeader, "header the API key is sent in")
	device := global.String("device", "", "device ID sent as X-Device-ID")
	timeout := global.Duration("timeout", client.DefaultTimeout, "per-request timeout")
	envFile := global.String("env-file", "", "load environment variables from this .env file first")
	insecure := global.Bool("insecure", false, "skip TLS certificate verification")
	verbose := global.Bool("v", false, "debug logging to stderr")
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return 2
	}

	lvl := slog.LevelWarn
	if *verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: lvl})))

	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(stderr, "spoilctl: load env file: %v\n", err)
			return 1
		}
	}

	c, err := client.New(client.Options{
		BaseURL:            *server,
		APIKey:             os.Getenv(*keyEnv),
		Header:             *header,
		DeviceID:           *device,
		Timeout:            *timeout,
		InsecureSkipVerify: *insecure,
	})
	if err != nil {
		fmt.Fprintf(stderr, "spoilctl: %v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, rest := global.Arg(0), global.Args()[1:]
	slog.Debug("running command", "command", cmd, "server", *server)

	switch cmd {
	case "analyze":
		err = cmdAnalyze(ctx, c, rest, stdout, stderr)
	case "health":
		var h *types.HealthResponse
		if h, err = c.Health(ctx); err == nil {
			writeJSON(stdout, h, true)
		}
	case "sensors":
		var sensors []types.Sensor
		if sensors, err = c.Sensors(ctx); err == nil {
			writeJSON(stdout, sensors, true)
		}
	case "dataset":
		err = cmdDataset(ctx, c, stdout)
	case "stats":
		err = cmdStats(ctx, c, stdout)
	case "watch":
		err = c.Stream(ctx, func(ev types.StreamEvent) {
			writeJSON(stdout, ev, false)
		})
	default:
		fmt.Fprintf(stderr, "spoilctl: unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintf(stderr, "spoilctl %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func cmdAnalyze(ctx context.Context, c *client.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	gasFlags := map[string]types.Gas{"nh3": types.NH3, "h2s": types.H2S, "tma": types.TMA, "dms": types.DMS}
	values := map[types.Gas]*float64{
		types.NH3: fs.Float64("nh3", 0, "ammonia reading, ppm"),
		types.H2S: fs.Float64("h2s", 0, "hydrogen sulfide reading, ppm"),
		types.TMA: fs.Float64("tma", 0, "trimethylamine reading, ppm"),
		types.DMS: fs.Float64("dms", 0, "dimethyl sulfide reading, ppm"),
	}
	simulate := fs.Bool("simulate", false, "use /api/simulate instead of /analyze")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}

	// Only gases given on the command line are sent; the server reports the
	// rest as missing. Any value, negative included, is passed through.
	readings := types.Readings{}
	fs.Visit(func(f *flag.Flag) {
		if g, ok := gasFlags[f.Name]; ok {
			readings[g] = *values[g]
		}
	})

	analyze := c.Analyze
	if *simulate {
		analyze = c.Simulate
	}
	res, err := analyze(ctx, readings)
	if err != nil {
		return err
	}
	writeJSON(stdout, res, true)
	return nil
}

// datasetReport summarises how the classifier agrees with dataset labels.
type datasetReport struct {
	Rows       int            `json:"rows"`
	Agree      int            `json:"agree"`
	Disagree   int            `json:"disagree"`
	Agreement  float64        `json:"agreement"`
	ByStatus   map[string]int `json:"by_status"`
	Mismatches []mismatch     `json:"mismatches,omitempty"`
}

type mismatch struct {
	Row    int              `json:"row"`
	Label  string           `json:"label"`
	Result types.FoodStatus `json:"result"`
}

func cmdDataset(ctx context.Context, c *client.Client, stdout io.Writer) error {
	rows, err := c.Dataset(ctx)
	if err != nil {
		return err
	}
	results := make([]types.Result, 0, len(rows))
	for i, row := range rows {
		res, err := c.Simulate(ctx, row.Readings())
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		results = append(results, res)
	}
	writeJSON(stdout, compare(rows, results), true)
	return nil
}

// compare pairs each dataset row with its classification result.
func compare(rows []types.DatasetRow, results []types.Result) datasetReport {
	rep := datasetReport{ByStatus: map[string]int{}}
	for i := range rows {
		if i >= len(results) {
			break
		}
		rep.Rows++
		got := results[i].Status
		rep.ByStatus[string(got)]++
		if labelSpoiled(rows[i].FoodSpoiled) == (got == types.Spoiled) {
			rep.Agree++
			continue
		}
		rep.Disagree++
		rep.Mismatches = append(rep.Mismatches, mismatch{Row: i + 1, Label: rows[i].FoodSpoiled, Result: got})
	}
	if rep.Rows > 0 {
		rep.Agreement = float64(rep.Agree) / float64(rep.Rows)
	}
	return rep
}

// labelSpoiled interprets a dataset label such as "Yes", "No" or "Spoiled".
func labelSpoiled(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "yes", "y", "true", "1", "spoiled":
		return true
	default:
		return false
	}
}

func cmdStats(ctx context.Context, c *client.Client, stdout io.Writer) error {
	counts, err := c.AnalysisCounts(ctx)
	if err != nil {
		return err
	}
	total := counts[types.Fresh] + counts[types.Spoiled]
	fmt.Fprintf(stdout, "%-8s %10s\n", "STATUS", "ANALYSES")
	fmt.Fprintf(stdout, "%-8s %10.0f\n", types.Fresh, counts[types.Fresh])
	fmt.Fprintf(stdout, "%-8s %10.0f\n", types.Spoiled, counts[types.Spoiled])
	fmt.Fprintf(stdout, "%-8s %10.0f\n", "total", total)
	return nil
}

func writeJSON(w io.Writer, v interface{}, indent bool) {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		slog.Error("encode output", "err", err)
	}
}
