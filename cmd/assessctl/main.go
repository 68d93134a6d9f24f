// Command assessctl runs the scoring and analytics engine offline against
// JSON files or standard input.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/config"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/correlation"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/ingest"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/monitoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/security"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/stats"
)

var version = "dev"

// toolkit is what every command scores with. It is built from --config when
// given and from the built-in battery otherwise.
type toolkit struct {
	scorer     *scoring.KeywordScorer
	aggregator *scoring.Aggregator
	guard      *security.Guard
}

func main() {
	slog.SetDefault(monitoring.NewLoggerWithWriter(os.Stderr, "warn").Logger)

	if err := newCLI(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCLI(in io.Reader, out io.Writer) *cli.App {
	tk := &toolkit{}

	fileFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "JSON input file, - for standard input",
			Value:   "-",
		}
	}

	return &cli.App{
		Name:    "assessctl",
		Usage:   "score assessments and analyze cohorts from the command line",
		Version: version,
		Reader:  in,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file with the keyword battery and composite strategy",
				EnvVars: []string{"ASSESS_CONFIG_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			return tk.load(c.String("config"))
		},
		Commands: []*cli.Command{
			{
				Name:      "score",
				Usage:     "keyword score one free-text answer",
				ArgsUsage: "[answer]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "question", Aliases: []string{"q"}, Usage: "battery question id", Required: true},
					&cli.StringFlag{Name: "answer", Aliases: []string{"a"}, Usage: "answer text, defaults to the first argument"},
				},
				Action: tk.score,
			},
			{
				Name:   "battery",
				Usage:  "score a complete interview battery",
				Flags:  []cli.Flag{fileFlag()},
				Action: tk.battery,
			},
			{
				Name:      "classify",
				Usage:     "classify an automatic interview total against the battery maximum",
				ArgsUsage: "<total>",
				Action:    tk.classify,
			},
			{
				Name:   "assess",
				Usage:  "aggregate one assessment into module scores and a composite index",
				Flags:  []cli.Flag{fileFlag()},
				Action: tk.assess,
			},
			{
				Name:      "stats",
				Usage:     "population statistics of composite indices",
				ArgsUsage: "[index...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "JSON input file, - for standard input"},
				},
				Action: populationStats,
			},
			{
				Name:   "risk",
				Usage:  "aggregate the risk of an anomaly detection report",
				Flags:  []cli.Flag{fileFlag()},
				Action: risk,
			},
			{
				Name:  "correlate",
				Usage: "build a correlation matrix from keyed coefficients",
				Flags: []cli.Flag{
					fileFlag(),
					&cli.StringSliceFlag{Name: "module", Aliases: []string{"m"}, Usage: "known module name, repeatable"},
				},
				Action: correlate,
			},
		},
	}
}

func (tk *toolkit) load(path string) error {
	tk.guard = security.NewGuard(security.DefaultConfig())

	if path == "" {
		tk.scorer = scoring.DefaultScorer()
		tk.aggregator = scoring.NewAggregator(scoring.WithScorer(tk.scorer))
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if tk.scorer, err = cfg.Scorer(); err != nil {
		return err
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}
	tk.guard = security.NewGuard(security.Config{MaxAnswerLength: cfg.Server.MaxAnswerLength})
	tk.aggregator = scoring.NewAggregator(scoring.WithStrategy(strategy), scoring.WithScorer(tk.scorer))
	return nil
}

func (tk *toolkit) score(c *cli.Context) error {
	answer := c.String("answer")
	if !c.IsSet("answer") {
		answer = c.Args().First()
	}

	if err := tk.guard.ValidateAnswer("answer", answer); err != nil {
		return err
	}

	points, err := tk.scorer.Score(c.String("question"), answer)
	if err != nil {
		return err
	}

	return printJSON(c, map[string]interface{}{
		"question_id": c.String("question"),
		"score":       points,
		"max_score":   scoring.MaxQuestionScore,
	})
}

func (tk *toolkit) battery(c *cli.Context) error {
	var req struct {
		Answers []scoring.Answer `json:"answers"`
	}
	if err := decodeInput(c, &req); err != nil {
		return err
	}

	for i, a := range req.Answers {
		if err := tk.guard.ValidateAnswer(fmt.Sprintf("answers[%d].text", i), a.Text); err != nil {
			return err
		}
	}

	result, err := tk.scorer.ScoreBattery(req.Answers)
	if err != nil {
		return err
	}
	return printJSON(c, result)
}

func (tk *toolkit) classify(c *cli.Context) error {
	if c.NArg() != 1 {
		return apperrors.NewValidationError("classify takes exactly one total")
	}
	total, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return apperrors.NewValidationError("total must be an integer", c.Args().First())
	}

	classification, err := tk.scorer.Classify(total)
	if err != nil {
		return err
	}

	return printJSON(c, map[string]interface{}{
		"total":          total,
		"max_total":      tk.scorer.MaxTotal(),
		"classification": classification,
		"threshold":      scoring.AptoThreshold,
	})
}

func (tk *toolkit) assess(c *cli.Context) error {
	var in scoring.AssessmentInput
	if err := decodeInput(c, &in); err != nil {
		return err
	}

	for i, r := range in.Responses {
		if err := tk.guard.ValidateAnswer(fmt.Sprintf("responses[%d].answer", i), r.Answer); err != nil {
			return err
		}
	}

	result, err := tk.aggregator.Aggregate(in)
	if err != nil {
		return err
	}
	return printJSON(c, result)
}

func populationStats(c *cli.Context) error {
	var values []float64

	switch {
	case c.IsSet("file"):
		data, err := readInput(c)
		if err != nil {
			return err
		}
		if values, err = ingest.Values(data); err != nil {
			return err
		}
	default:
		for _, arg := range c.Args().Slice() {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return apperrors.NewValidationError("composite index must be a number", arg)
			}
			values = append(values, v)
		}
	}

	return printJSON(c, stats.Compute(values))
}

func risk(c *cli.Context) error {
	data, err := readInput(c)
	if err != nil {
		return err
	}

	payload, err := ingest.Anomalies(data)
	if err != nil {
		return err
	}
	return printJSON(c, anomaly.Aggregate(payload.Records))
}

func correlate(c *cli.Context) error {
	data, err := readInput(c)
	if err != nil {
		return err
	}

	payload, err := ingest.Correlations(data, c.StringSlice("module"))
	if err != nil {
		return err
	}

	report, err := correlation.BuildReport(payload.Entries, payload.Modules)
	if err != nil {
		return err
	}
	return printJSON(c, report)
}

func readInput(c *cli.Context) ([]byte, error) {
	path := c.String("file")
	if path == "" || path == "-" {
		return io.ReadAll(c.App.Reader)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read input", err.Error())
	}
	return data, nil
}

func decodeInput(c *cli.Context, v interface{}) error {
	data, err := readInput(c)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.NewValidationError("invalid JSON input", err.Error())
	}
	return nil
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
