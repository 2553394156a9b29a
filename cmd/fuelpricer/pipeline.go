package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/fuelpricer/internal/adapters/notify"
	"github.com/alejandrodnm/fuelpricer/internal/pipeline"
	"github.com/alejandrodnm/fuelpricer/internal/ports"
)

func runPipeline(ctx context.Context, f *flags) error {
	if f.input == "" {
		return errors.New("pipeline mode requires -input <history.csv>")
	}

	summary, err := pipeline.Run(ctx, f.input, f.output)
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d rows into %s (%d dropped for missing history or values)\n",
		summary.RowsWritten, f.output, summary.Dropped)
	return nil
}

func runEvaluate(ctx context.Context, f *flags, predictor ports.Predictor) error {
	path := f.input
	if path == "" {
		path = f.output
	}

	rows, err := pipeline.ReadParquet(path)
	if err != nil {
		return err
	}
	test := pipeline.Holdout(rows, f.holdout)
	slog.Debug("evaluating model", "dataset", path, "rows", len(rows), "holdout_rows", len(test))

	m, err := pipeline.Evaluate(ctx, test, predictor)
	if err != nil {
		return err
	}
	notify.NewConsole(false).PrintEvaluation(m)
	return nil
}
