package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alejandrodnm/fuelpricer/internal/adapters/dataset"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/notify"
	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/alejandrodnm/fuelpricer/internal/pricing"
)

// optFloat es un flag float64 que distingue "no indicado" de 0.
type optFloat struct {
	v *float64
}

func (o *optFloat) String() string {
	if o == nil || o.v == nil {
		return ""
	}
	return strconv.FormatFloat(*o.v, 'f', -1, 64)
}

func (o *optFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	o.v = &v
	return nil
}

// observationFromFlags construye la observación. -input (JSON) es la base y los
// flags explícitos la sobrescriben.
func observationFromFlags(f *flags) (domain.MarketObservation, error) {
	var obs domain.MarketObservation
	if f.input != "" {
		var err error
		obs, err = dataset.ReadObservationJSON(f.input)
		if err != nil {
			return obs, err
		}
	}

	if f.fuel != "" {
		obs.FuelType = f.fuel
	}
	if f.date != "" {
		obs.Date = f.date
	}
	for _, o := range []struct {
		src *optFloat
		dst **float64
	}{
		{&f.price, &obs.Price},
		{&f.lastPrice, &obs.LastPrice},
		{&f.cost, &obs.Cost},
		{&f.comp, &obs.CompetitorPrice},
		{&f.comp1, &obs.Comp1Price},
		{&f.comp2, &obs.Comp2Price},
		{&f.comp3, &obs.Comp3Price},
		{&f.volume, &obs.EstVolumeYesterday},
	} {
		if o.src.v != nil {
			*o.dst = o.src.v
		}
	}

	return obs.WithFuelDefaults()
}

func runRecommend(ctx context.Context, f *flags, svc *pricing.Service) error {
	obs, err := observationFromFlags(f)
	if err != nil {
		return err
	}

	res, err := svc.Recommend(ctx, obs)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) {
			return fmt.Errorf("%w (set it with a flag or in -input)", err)
		}
		return err
	}

	slog.Debug("recommendation stored in session history", "entries", svc.History().Len(), "id", res.Entry.ID)
	return nil
}

func runBatch(ctx context.Context, f *flags, svc *pricing.Service, console *notify.Console) error {
	if f.input == "" {
		return errors.New("batch mode requires -input <observations.csv>")
	}

	batch, err := dataset.LoadObservationsCSV(f.input)
	if err != nil {
		return err
	}
	for i := range batch {
		if batch[i], err = batch[i].WithFuelDefaults(); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	items, err := svc.RecommendBatch(ctx, batch)
	console.PrintBatch(items)
	return err
}
