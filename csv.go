package qplot

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ReadOptions controls how a delimited file is parsed.
type ReadOptions struct {
	// Delimiter separates the fields; the zero value means ','.
	Delimiter rune

	// IndexCol drops the first column which holds a row index.
	IndexCol bool

	// NaNValues are the cell contents read as missing values.
	// Empty means gota's defaults.
	NaNValues []string

	// Name of the resulting data frame.
	Name string
}

// ReadCSVFile reads the delimited file path.
func ReadCSVFile(path string, opts ReadOptions) (*DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}
	return ReadCSV(file, opts)
}

// ReadCSV parses delimited data with a header line from r. Integer and
// float columns are detected; everything else becomes a String field.
func ReadCSV(r io.Reader, opts ReadOptions) (*DataFrame, error) {
	loadOpts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
	}
	if opts.Delimiter != 0 {
		loadOpts = append(loadOpts, dataframe.WithDelimiter(opts.Delimiter))
	}
	if len(opts.NaNValues) > 0 {
		loadOpts = append(loadOpts, dataframe.NaNValues(opts.NaNValues))
	}

	gdf := dataframe.ReadCSV(r, loadOpts...)
	if gdf.Err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.Name, gdf.Err)
	}
	if opts.IndexCol && gdf.Ncol() > 0 {
		gdf = gdf.Drop(0)
		if gdf.Err != nil {
			return nil, fmt.Errorf("dropping index column of %s: %w", opts.Name, gdf.Err)
		}
	}
	if gdf.Nrow() == 0 || gdf.Ncol() == 0 {
		return nil, fmt.Errorf("reading %s: %w", opts.Name, ErrEmptyData)
	}

	df := NewDataFrame(opts.Name, nil)
	df.N = gdf.Nrow()
	for _, name := range gdf.Names() {
		df.Columns[name] = fieldFromSeries(gdf.Col(name), df.Pool)
	}
	return df, nil
}

func fieldFromSeries(s series.Series, pool *StringPool) Field {
	n := s.Len()
	switch s.Type() {
	case series.Int, series.Float:
		ft := Float
		if s.Type() == series.Int {
			ft = Int
		}
		f := NewField(n, ft, pool)
		for i, x := range s.Float() {
			if s.Elem(i).IsNA() {
				x = math.NaN()
			}
			f.Data[i] = x
		}
		return f
	}

	f := NewField(n, String, pool)
	for i, rec := range s.Records() {
		if s.Elem(i).IsNA() {
			f.Data[i] = math.NaN()
			continue
		}
		f.Data[i] = float64(pool.Add(rec))
	}
	return f
}
