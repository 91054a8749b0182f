package csvinput

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/waiwai24/free-ollama/internal/domain"
)

const (
	columnCountry = "country"
	columnLink    = "link"
)

// FileSource reads asset rows from a CSV file on every call.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Assets(_ context.Context) ([]domain.AssetRow, error) {
	return ReadAssets(s.path)
}

func ReadAssets(path string) ([]domain.AssetRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open assets file: %w", err)
	}
	defer file.Close()

	rows, err := DecodeAssets(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return rows, nil
}

// DecodeAssets parses country,link rows. Input may be UTF-8, UTF-16 with a BOM
// or GBK. Data rows are numbered from 1, the header is not counted.
func DecodeAssets(r io.Reader) ([]domain.AssetRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets: %w", err)
	}

	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoderFor(data)))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	countryIdx, linkIdx := 0, 1
	rows := make([]domain.AssetRow, 0)
	first := true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("malformed csv: %w", err)
		}

		if first {
			first = false

			if c, l, ok := headerColumns(record); ok {
				countryIdx, linkIdx = c, l
				continue
			}
		}

		rows = append(rows, domain.AssetRow{
			Line:    len(rows) + 1,
			Country: field(record, countryIdx),
			Link:    field(record, linkIdx),
		})
	}

	return rows, nil
}

func decoderFor(data []byte) transform.Transformer {
	if hasBOM(data) || utf8.Valid(data) {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}

	return simplifiedchinese.GBK.NewDecoder()
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

func headerColumns(record []string) (int, int, bool) {
	countryIdx, linkIdx := -1, -1

	for i, name := range record {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case columnCountry:
			countryIdx = i
		case columnLink, "url":
			linkIdx = i
		}
	}

	if linkIdx < 0 {
		return 0, 0, false
	}

	return countryIdx, linkIdx, true
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}
