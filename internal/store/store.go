// Package store persists pipeline outputs locally and hands back the
// matching remote keys. Remote keys always use the output/ prefix so the
// bucket layout mirrors a default local run.
package store

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	"news-sentiment-go/internal/types"
	"news-sentiment-go/internal/usage"
)

const (
	textSubdir  = "txt"
	tableSubdir = "csv"
	remoteRoot  = "output"

	resultsFile = "sentiment_results.csv"
	costsFile   = "aws_costs.csv"
)

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// costRow is the CSV shape of a cost line; the TOTAL row has an empty
// usage column.
type costRow struct {
	Service string  `csv:"service"`
	Usage   string  `csv:"usage"`
	Cost    float64 `csv:"cost_usd"`
}

// WriteText saves one item's text and returns the local path plus the
// remote key. Articles get _article.txt, transcripts _transcript.txt.
func (s *Store) WriteText(name string, kind types.ContentKind, text string) (string, string, error) {
	suffix := "_article.txt"
	if kind == types.KindVideo {
		suffix = "_transcript.txt"
	}
	file := name + suffix

	dir := filepath.Join(s.root, textSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create %s: %w", dir, err)
	}
	local := filepath.Join(dir, file)
	if err := os.WriteFile(local, []byte(text), 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", local, err)
	}
	return local, path.Join(remoteRoot, textSubdir, file), nil
}

func (s *Store) WriteSentimentResults(records []types.SentimentRecord) (string, string, error) {
	local, err := s.writeCSV(resultsFile, &records)
	if err != nil {
		return "", "", err
	}
	return local, path.Join(remoteRoot, tableSubdir, resultsFile), nil
}

func (s *Store) WriteCosts(rows []usage.CostRow) (string, string, error) {
	out := make([]costRow, 0, len(rows))
	for _, r := range rows {
		usageCol := strconv.FormatInt(r.Usage, 10)
		if r.Service == usage.ServiceTotal {
			usageCol = ""
		}
		out = append(out, costRow{Service: r.Service, Usage: usageCol, Cost: r.Cost})
	}
	local, err := s.writeCSV(costsFile, &out)
	if err != nil {
		return "", "", err
	}
	return local, path.Join(remoteRoot, tableSubdir, costsFile), nil
}

func (s *Store) writeCSV(file string, rows interface{}) (string, error) {
	dir := filepath.Join(s.root, tableSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	local := filepath.Join(dir, file)
	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", local, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(rows, f); err != nil {
		return "", fmt.Errorf("write %s: %w", local, err)
	}
	return local, nil
}

// TableDir is where the tabular outputs (and the xlsx workbook) live.
func (s *Store) TableDir() string {
	return filepath.Join(s.root, tableSubdir)
}

// RemoteTableKey maps a tabular file name to its bucket key.
func RemoteTableKey(file string) string {
	return path.Join(remoteRoot, tableSubdir, file)
}
