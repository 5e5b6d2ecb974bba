package batch

import (
	"fmt"
	"io"
	"strings"

	"Hydra/internal/calc/pipelength"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// Columns of an import sheet, first row is the header and is skipped.
var Columns = []string{
	"temperature_c",
	"material",
	"nominal_size",
	"flow_m3_h",
	"pump_model",
	"available_head_mce",
	"elbows",
	"extra_dzeta",
	"extra_losses_mce",
	"deduct_static_losses",
}

var resultColumns = []string{
	"velocity_m_s",
	"reynolds",
	"friction_factor",
	"loss_per_metre_mmce",
	"fixed_losses_mce",
	"outcome",
	"max_length_m",
	"error",
}

// RowError points at a sheet row that could not be read.
type RowError struct {
	Row int    `json:"row"`
	Err string `json:"error"`
}

// ReadSheet parses the first sheet of a workbook into calculator inputs.
// Blank rows are skipped; unreadable rows are reported and skipped.
func ReadSheet(r io.Reader) ([]pipelength.Input, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoItems
	}

	var (
		items   []pipelength.Input
		badRows []RowError
	)
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		in, err := parseRow(rows[i])
		if err != nil {
			badRows = append(badRows, RowError{Row: i + 1, Err: err.Error()})
			continue
		}
		items = append(items, in)
	}
	return items, badRows, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// number accepts a decimal comma and treats an empty cell as zero.
func number(row []string, i int) (float64, error) {
	s := strings.ReplaceAll(cell(row, i), ",", ".")
	if s == "" {
		return 0, nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", Columns[i], err)
	}
	return v, nil
}

func parseRow(row []string) (pipelength.Input, error) {
	var (
		in  pipelength.Input
		err error
	)
	if in.TemperatureC, err = number(row, 0); err != nil {
		return in, err
	}
	in.Material = cell(row, 1)
	in.NominalSize = cell(row, 2)
	if in.FlowM3H, err = number(row, 3); err != nil {
		return in, err
	}
	in.PumpModel = cell(row, 4)
	if in.AvailableHeadMCE, err = number(row, 5); err != nil {
		return in, err
	}
	if s := cell(row, 6); s != "" {
		if in.Elbows, err = cast.ToIntE(s); err != nil {
			return in, fmt.Errorf("%s: %w", Columns[6], err)
		}
	}
	if in.ExtraDzeta, err = number(row, 7); err != nil {
		return in, err
	}
	// several extra losses may share the cell, separated by ';'
	for _, part := range strings.Split(cell(row, 8), ";") {
		part = strings.ReplaceAll(strings.TrimSpace(part), ",", ".")
		if part == "" {
			continue
		}
		v, err := cast.ToFloat64E(part)
		if err != nil {
			return in, fmt.Errorf("%s: %w", Columns[8], err)
		}
		in.ExtraLossesMCE = append(in.ExtraLossesMCE, v)
	}
	if s := cell(row, 9); s != "" {
		if in.DeductStaticLosses, err = cast.ToBoolE(s); err != nil {
			return in, fmt.Errorf("%s: %w", Columns[9], err)
		}
	}
	if in.Material == "" || in.NominalSize == "" {
		return in, fmt.Errorf("material and nominal size required")
	}
	return in, nil
}

// WriteSheet writes inputs and their outcomes side by side into a new workbook.
func WriteSheet(w io.Writer, items []pipelength.Input, res Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := make([]any, 0, len(Columns)+len(resultColumns))
	for _, c := range Columns {
		header = append(header, c)
	}
	for _, c := range resultColumns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, o := range res.Results {
		in := items[o.Index]
		row := []any{
			in.TemperatureC, in.Material, in.NominalSize, in.FlowM3H, in.PumpModel,
			in.AvailableHeadMCE, in.Elbows, in.ExtraDzeta, joinLosses(in.ExtraLossesMCE), in.DeductStaticLosses,
		}
		if r := o.Result; r != nil {
			var friction any = ""
			if r.FrictionFactor != nil {
				friction = *r.FrictionFactor
			}
			row = append(row, r.VelocityMS, r.Reynolds, friction, r.LossPerMetreMMCE, r.FixedLossesMCE, string(r.Outcome), r.MaxLengthM, "")
		} else {
			row = append(row, "", "", "", "", "", "", "", o.Error)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func joinLosses(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = cast.ToString(x)
	}
	return strings.Join(parts, ";")
}
