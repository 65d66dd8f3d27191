// Package parquet exports the hotspot sample as a Parquet file.
package parquet

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/couchcryptid/accident-analysis/internal/domain"
)

// FileName is the sample file's name inside the output directory.
const FileName = "hotspot_sample.parquet"

const parallelism = 4

type hotspotRow struct {
	StartLat float64 `parquet:"name=start_lat, type=DOUBLE"`
	StartLng float64 `parquet:"name=start_lng, type=DOUBLE"`
	Severity int32   `parquet:"name=severity, type=INT32"`
}

// WriteHotspots writes points to path, replacing any existing file.
func WriteHotspots(path string, points []domain.HotspotPoint) (err error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close parquet file: %w", cerr)
		}
	}()

	pw, err := writer.NewParquetWriter(fw, new(hotspotRow), parallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, p := range points {
		row := hotspotRow{StartLat: p.Lat, StartLng: p.Lng, Severity: int32(p.Severity)}
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("write hotspot row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

// ReadHotspots loads a file written by WriteHotspots.
func ReadHotspots(path string) ([]domain.HotspotPoint, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(hotspotRow), parallelism)
	if err != nil {
		return nil, fmt.Errorf("create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	rows := make([]hotspotRow, pr.GetNumRows())
	if len(rows) > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("read hotspot rows: %w", err)
		}
	}

	out := make([]domain.HotspotPoint, len(rows))
	for i, r := range rows {
		out[i] = domain.HotspotPoint{Lat: r.StartLat, Lng: r.StartLng, Severity: int(r.Severity)}
	}
	return out, nil
}
