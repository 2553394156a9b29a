package pipeline

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

const parquetParallelism = 4

// parquetRecord es el esquema del dataset procesado: las columnas de
// domain.FeatureColumns, en el mismo orden, más date y volume.
type parquetRecord struct {
	Date              string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price             float64 `parquet:"name=price, type=DOUBLE"`
	Cost              float64 `parquet:"name=cost, type=DOUBLE"`
	Comp1Price        float64 `parquet:"name=comp1_price, type=DOUBLE"`
	Comp2Price        float64 `parquet:"name=comp2_price, type=DOUBLE"`
	Comp3Price        float64 `parquet:"name=comp3_price, type=DOUBLE"`
	AvgCompPrice      float64 `parquet:"name=avg_comp_price, type=DOUBLE"`
	PriceSpreadVsComp float64 `parquet:"name=price_spread_vs_comp, type=DOUBLE"`
	LagPrice1         float64 `parquet:"name=lag_price_1, type=DOUBLE"`
	LagVolume1        float64 `parquet:"name=lag_volume_1, type=DOUBLE"`
	MAVolume7         float64 `parquet:"name=ma_volume_7, type=DOUBLE"`
	MAVolume14        float64 `parquet:"name=ma_volume_14, type=DOUBLE"`
	DayOfWeek         int32   `parquet:"name=dayofweek, type=INT32"`
	Month             int32   `parquet:"name=month, type=INT32"`
	Volume            float64 `parquet:"name=volume, type=DOUBLE"`
}

func toRecord(r ProcessedRow) parquetRecord {
	f := r.Features
	return parquetRecord{
		Date:              r.Date.Format(domain.DateLayout),
		Price:             f.Price,
		Cost:              f.Cost,
		Comp1Price:        f.Comp1Price,
		Comp2Price:        f.Comp2Price,
		Comp3Price:        f.Comp3Price,
		AvgCompPrice:      f.AvgCompPrice,
		PriceSpreadVsComp: f.PriceSpreadVsComp,
		LagPrice1:         f.LagPrice1,
		LagVolume1:        f.LagVolume1,
		MAVolume7:         f.MAVolume7,
		MAVolume14:        f.MAVolume14,
		DayOfWeek:         int32(f.DayOfWeek),
		Month:             int32(f.Month),
		Volume:            r.Volume,
	}
}

func fromRecord(rec parquetRecord) (ProcessedRow, error) {
	d, err := time.Parse(domain.DateLayout, rec.Date)
	if err != nil {
		return ProcessedRow{}, domain.InvalidField("date", err.Error())
	}
	return ProcessedRow{
		Date: d,
		Features: domain.FeatureVector{
			Price:             rec.Price,
			Cost:              rec.Cost,
			Comp1Price:        rec.Comp1Price,
			Comp2Price:        rec.Comp2Price,
			Comp3Price:        rec.Comp3Price,
			AvgCompPrice:      rec.AvgCompPrice,
			PriceSpreadVsComp: rec.PriceSpreadVsComp,
			LagPrice1:         rec.LagPrice1,
			LagVolume1:        rec.LagVolume1,
			MAVolume7:         rec.MAVolume7,
			MAVolume14:        rec.MAVolume14,
			DayOfWeek:         float64(rec.DayOfWeek),
			Month:             float64(rec.Month),
		},
		Volume: rec.Volume,
	}, nil
}

// WriteParquet escribe el dataset procesado con compresión SNAPPY.
func WriteParquet(path string, rows []ProcessedRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("pipeline.WriteParquet: create %q: %w", path, err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(parquetRecord), parquetParallelism)
	if err != nil {
		return fmt.Errorf("pipeline.WriteParquet: create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range rows {
		if err := pw.Write(toRecord(r)); err != nil {
			pw.WriteStop()
			return fmt.Errorf("pipeline.WriteParquet: write record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("pipeline.WriteParquet: finalize: %w", err)
	}
	return nil
}

// ReadParquet lee un dataset procesado escrito por WriteParquet.
func ReadParquet(path string) ([]ProcessedRow, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline.ReadParquet: open %q: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(parquetRecord), parquetParallelism)
	if err != nil {
		return nil, fmt.Errorf("pipeline.ReadParquet: create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	recs := make([]parquetRecord, n)
	if n > 0 {
		if err := pr.Read(&recs); err != nil {
			return nil, fmt.Errorf("pipeline.ReadParquet: read: %w", err)
		}
	}

	rows := make([]ProcessedRow, 0, n)
	for i, rec := range recs {
		row, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("pipeline.ReadParquet: row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
