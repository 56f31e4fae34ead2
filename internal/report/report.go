package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/internal/screener"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
)

// timestampLayout stamps output file names
const timestampLayout = "20060102_150405"

// utf8BOM lets spreadsheet tools detect UTF-8 in files holding CJK names
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the CSV column row
var Header = []string{"rank", "symbol", "name", "industry", "close", "score", "score_details"}

// CSVFilename names the ranking file written at ts
func CSVFilename(ts time.Time) string {
	return fmt.Sprintf("stock_screening_results_%s.csv", ts.Format(timestampLayout))
}

// JSONFilename names the full run report written at ts
func JSONFilename(ts time.Time) string {
	return fmt.Sprintf("stock_screening_report_%s.json", ts.Format(timestampLayout))
}

// WriteCSV writes ranked candidates, best first, with a header row
func WriteCSV(w io.Writer, ranked []models.ScoredCandidate) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i, c := range ranked {
		closePrice := ""
		if v, ok := c.Close.Get(); ok {
			closePrice = strconv.FormatFloat(v, 'f', 2, 64)
		}
		record := []string{
			strconv.Itoa(i + 1),
			c.Symbol,
			c.Name,
			c.Industry,
			closePrice,
			strconv.FormatFloat(c.Score, 'f', 2, 64),
			c.Breakdown,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the top of a run's ranking under dir and returns the file
// path. An empty ranking writes nothing and returns "".
func SaveCSV(dir string, r *screener.Report) (string, error) {
	if len(r.Top) == 0 {
		logger.Warn("No ranked candidates, skipping CSV",
			logger.String("run_id", r.RunID),
		)
		return "", nil
	}
	return save(dir, CSVFilename(r.FinishedAt), func(w io.Writer) error {
		return WriteCSV(w, r.Top)
	})
}

// SaveJSON writes the complete run report under dir
func SaveJSON(dir string, r *screener.Report) (string, error) {
	return save(dir, JSONFilename(r.FinishedAt), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	})
}

func save(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	logger.Info("Report saved", logger.String("path", path))
	return path, nil
}
