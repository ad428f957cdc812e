package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/poule-scoring/internal/app"
	"github.com/riskibarqy/poule-scoring/internal/config"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
	"github.com/riskibarqy/poule-scoring/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCLI(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "scorer",
		Usage:     "run prediction scoring passes once and print the outcome",
		Writer:    out,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run a scoring pass",
				Subcommands: []*cli.Command{
					passCommand(usecase.PassMatches, "score finished matches"),
					passCommand(usecase.PassTopscorers, "score topscorer picks"),
					passCommand(usecase.PassGroups, "score group standing picks"),
					passCommand(usecase.PassWinner, "score tournament winner picks"),
					passCommand(usecase.PassAll, "run every pass concurrently and recalculate standings once"),
				},
			},
		},
	}
}

func passCommand(pass, usage string) *cli.Command {
	return &cli.Command{
		Name:  pass,
		Usage: usage,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "re-rank every pool with members, not only pools the pass scored"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(logging.Options{
				Level:   cfg.LogLevel,
				Output:  os.Stderr,
				Service: cfg.ServiceName,
				Version: cfg.ServiceVersion,
			})
			defer func() { _ = logger.Sync() }()

			application, err := app.New(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			opts := usecase.ScoringOptions{Force: c.Bool("force")}
			outcome, err := runPass(c.Context, application.Scoring, pass, opts)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, outcome)
		},
	}
}

func runPass(ctx context.Context, svc *usecase.ScoringService, pass string, opts usecase.ScoringOptions) (map[string]any, error) {
	switch pass {
	case usecase.PassMatches:
		res, err := svc.ScoreMatches(ctx, opts)
		if err != nil {
			return nil, err
		}
		out := summaryFields(res.PassSummary)
		out["matchesProcessed"] = res.MatchesProcessed
		return out, nil
	case usecase.PassTopscorers:
		res, err := svc.ScoreTopscorers(ctx, opts)
		if err != nil {
			return nil, err
		}
		out := summaryFields(res.PassSummary)
		out["topScorers"] = res.TopScorers
		out["maxGoals"] = res.MaxGoals
		return out, nil
	case usecase.PassGroups:
		res, err := svc.ScoreGroups(ctx, opts)
		if err != nil {
			return nil, err
		}
		out := summaryFields(res.PassSummary)
		out["groupsProcessed"] = res.GroupsProcessed
		return out, nil
	case usecase.PassWinner:
		res, err := svc.ScoreWinner(ctx, opts)
		if err != nil {
			return nil, err
		}
		out := summaryFields(res.PassSummary)
		out["winner"] = res.Winner
		out["finalist"] = res.Finalist
		return out, nil
	default:
		res, err := svc.RunAll(ctx, opts)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"runId":       res.RunID,
			"poolsRanked": res.PoolsRanked,
			"matches":     summaryFields(res.Matches.PassSummary),
			"topscorers":  summaryFields(res.Topscorers.PassSummary),
			"groups":      summaryFields(res.Groups.PassSummary),
			"winner":      summaryFields(res.Winner.PassSummary),
		}, nil
	}
}

func summaryFields(s usecase.PassSummary) map[string]any {
	return map[string]any{
		"runId":       s.RunID,
		"success":     s.Success,
		"noOp":        s.NoOp,
		"message":     s.Message,
		"updated":     s.Updated,
		"failed":      s.Failed,
		"poolsRanked": s.PoolsRanked,
	}
}

func printJSON(w io.Writer, v any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
