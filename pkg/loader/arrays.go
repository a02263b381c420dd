package loader

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/msmview/pkg/metrics"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// fieldDoc is the on-disk form of a scalar field. Values has len(Y) rows of
// len(X) entries; null entries decode as NaN ("no data").
type fieldDoc struct {
	X      []float64    `json:"x"`
	Y      []float64    `json:"y"`
	Values [][]*float64 `json:"values"`
}

// TimescaleTable holds implied time scales indexed by [process-1][lag].
type TimescaleTable struct {
	Lags       []float64   `json:"lags"`
	Unit       string      `json:"unit,omitempty"`
	Timescales [][]float64 `json:"timescales"`
}

// DecodeField parses a scalar field document.
func DecodeField(data []byte) (*model.ScalarField, error) {
	defer metrics.Timer(metrics.FieldDecode)()

	var doc fieldDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding field: %w", err)
	}
	values := make([][]float64, len(doc.Values))
	for i, row := range doc.Values {
		values[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				values[i][j] = nan()
				continue
			}
			values[i][j] = *v
		}
	}
	return model.NewScalarField(doc.X, doc.Y, values)
}

// EncodeField serializes a scalar field. Non-finite values become null.
func EncodeField(f *model.ScalarField) ([]byte, error) {
	rows := f.Rows()
	doc := fieldDoc{X: f.X, Y: f.Y, Values: make([][]*float64, len(rows))}
	for i, row := range rows {
		doc.Values[i] = make([]*float64, len(row))
		for j := range row {
			if isFinite(row[j]) {
				doc.Values[i][j] = &row[j]
			}
		}
	}
	return json.Marshal(doc)
}

// DecodeTimescales parses a timescale table document.
func DecodeTimescales(data []byte) (TimescaleTable, error) {
	var t TimescaleTable
	if err := json.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("decoding timescales: %w", err)
	}
	return t, nil
}

// EncodeTimescales serializes a timescale table.
func EncodeTimescales(t TimescaleTable) ([]byte, error) {
	return json.Marshal(t)
}

func readField(path string) (*model.ScalarField, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMissingField, err)
	}
	f, err := DecodeField(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
