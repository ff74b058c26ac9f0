package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// CSVReader replays a recording. Cells that parse as floats become numbers,
// other cells keep their text, and empty cells are absent from the sample.
type CSVReader struct {
	r      *csv.Reader
	header []string
	closer io.Closer
	row    int
}

// NewCSVReader reads the header row from r.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv recording has no header")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	return &CSVReader{r: cr, header: append([]string(nil), header...)}, nil
}

// OpenCSV opens a recording file. Close releases it.
func OpenCSV(path string) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	r, err := NewCSVReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Header returns the column names of the recording.
func (c *CSVReader) Header() []string { return c.header }

func (c *CSVReader) Next(ctx context.Context) (eeg.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read csv row %d: %w", c.row+1, err)
	}
	c.row++

	s := make(eeg.Sample, len(c.header))
	for i, name := range c.header {
		if i >= len(record) || record[i] == "" {
			continue
		}
		s[name] = eeg.ParseValue(record[i])
	}
	return s, nil
}

func (c *CSVReader) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// LoadCSV reads a whole recording into memory.
func LoadCSV(path string) ([]eeg.Sample, error) {
	r, err := OpenCSV(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadAll(context.Background(), r)
}

// WriteCSV writes samples with a header of the sorted union of their field
// names. Fields a sample lacks are written as empty cells.
func WriteCSV(w io.Writer, samples []eeg.Sample) error {
	keys := map[string]struct{}{}
	for _, s := range samples {
		for k := range s {
			keys[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keys))
	for k := range keys {
		header = append(header, k)
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(header))
	for _, s := range samples {
		for i, k := range header {
			row[i] = ""
			if v, ok := s[k]; ok {
				row[i] = v.String()
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV replaces the file at path with a recording of samples.
func SaveCSV(path string, samples []eeg.Sample) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".recording-*.csv")
	if err != nil {
		return fmt.Errorf("create temp recording: %w", err)
	}
	defer os.Remove(tmp.Name())

	err = WriteCSV(tmp, samples)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("save recording: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// RecordingName returns the file name for a recording started at t.
func RecordingName(t time.Time) string {
	return "eeg_data_" + t.Format("20060102_150405") + ".csv"
}
