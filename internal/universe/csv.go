package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
)

// LoadCSV reads the instrument universe from a CSV file with a
// "symbol,isin" header. Values are trimmed and uppercased; duplicate
// symbols keep the first occurrence.
func LoadCSV(path string) ([]contracts.Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read universe header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var instruments []contracts.Instrument
	seen := make(map[string]bool)

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read universe line %d: %w", line+1, err)
		}
		line++

		symbol := strings.ToUpper(strings.TrimSpace(record[0]))
		isin := strings.ToUpper(strings.TrimSpace(record[1]))

		if symbol == "" && isin == "" {
			continue
		}
		if symbol == "" || isin == "" {
			return nil, fmt.Errorf("universe line %d: symbol and isin are both required", line)
		}
		if len(isin) != 12 {
			return nil, fmt.Errorf("universe line %d: isin %q must be 12 characters", line, isin)
		}
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		instruments = append(instruments, contracts.Instrument{Symbol: symbol, ISIN: isin})
	}

	if len(instruments) == 0 {
		return nil, fmt.Errorf("universe file %s contains no instruments", path)
	}

	return instruments, nil
}

func validateHeader(header []string) error {
	if len(header) < 2 {
		return fmt.Errorf("universe header must have symbol,isin columns, got %v", header)
	}

	first := strings.ToLower(strings.TrimSpace(header[0]))
	second := strings.ToLower(strings.TrimSpace(header[1]))
	if first != "symbol" || second != "isin" {
		return fmt.Errorf("universe header must be symbol,isin, got %q,%q", header[0], header[1])
	}
	return nil
}
