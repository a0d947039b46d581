package compose

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/eduwrench/simclient/sim"
)

// ExportHeader captures metadata written alongside an exported table.
type ExportHeader struct {
	Version    int               `yaml:"export_version"`
	Scenario   string            `yaml:"scenario"`
	RequestID  string            `yaml:"request_id,omitempty"`
	User       string            `yaml:"user,omitempty"`
	CreatedAt  string            `yaml:"created_at,omitempty"`
	Parameters map[string]string `yaml:"parameters,omitempty"`
	Tasks      int               `yaml:"tasks"`
}

// Export combines header and rows for a complete exported table.
type Export struct {
	Header ExportHeader
	Rows   []Row
}

// ExportTable writes the header (YAML) and the table rows (CSV) to separate files.
// Times use shortest float formatting so they read back exactly. header.Tasks
// is set to the row count; a nil header writes a zero header.
func ExportTable(r *Result, header *ExportHeader, headerPath, dataPath string) error {
	var table Table
	if r != nil {
		table = r.Table
	}
	if header == nil {
		header = &ExportHeader{}
	}
	header.Tasks = len(table.Rows)

	headerData, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling export header: %w", err)
	}
	if err := os.WriteFile(headerPath, headerData, 0644); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating export data file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(TableColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range table.Rows {
		record := []string{
			row.TaskID,
			row.Host,
			row.Type,
			formatTime(row.Start),
			formatTime(row.End),
			formatTime(row.Duration),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

func formatTime(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LoadExport reads an exported header (YAML) and table (CSV).
func LoadExport(headerPath, dataPath string) (*Export, error) {
	headerData, err := os.ReadFile(headerPath)
	if err != nil {
		return nil, fmt.Errorf("reading export header: %w", err)
	}
	var header ExportHeader
	if err := yaml.Unmarshal(headerData, &header); err != nil {
		return nil, fmt.Errorf("parsing export header: %w", err)
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("opening export data: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	rows := []Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(record) < len(TableColumns) {
			return nil, fmt.Errorf("CSV row has %d columns, expected %d", len(record), len(TableColumns))
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return &Export{Header: header, Rows: rows}, nil
}

func parseRow(record []string) (Row, error) {
	row := Row{TaskID: record[0], Host: record[1], Type: record[2]}
	var err error
	if row.Start, err = strconv.ParseFloat(record[3], 64); err != nil {
		return Row{}, fmt.Errorf("task %s: parsing startTime: %w", row.TaskID, err)
	}
	if row.End, err = strconv.ParseFloat(record[4], 64); err != nil {
		return Row{}, fmt.Errorf("task %s: parsing endTime: %w", row.TaskID, err)
	}
	if row.Duration, err = strconv.ParseFloat(record[5], 64); err != nil {
		return Row{}, fmt.Errorf("task %s: parsing duration: %w", row.TaskID, err)
	}
	return row, nil
}

// ParamStrings renders request parameters for an export header.
func ParamStrings(params []sim.Param) map[string]string {
	out := make(map[string]string, len(params))
	for _, p := range params {
		out[p.Field] = fmt.Sprint(p.Value)
	}
	return out
}
