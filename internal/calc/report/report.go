package report

import (
	"fmt"
	"io"
	"time"

	"Hydra/internal/calc/pipelength"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
)

type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

// Render writes a one-page PDF summary of an evaluation and returns the
// identifier printed on it.
func Render(w io.Writer, meta Meta, in pipelength.Input, res pipelength.Result, now time.Time) (string, error) {
	if meta.Title == "" {
		meta.Title = "Maximum pipe length"
	}
	id := uuid.NewString()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(meta.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Project: %s", meta.Project)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", meta.Author)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.Cell(0, 5, "Report "+id)
	pdf.Ln(10)

	section := func(title string, rows [][2]string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, r := range rows {
			pdf.CellFormat(80, 6, tr(r[0]), "1", 0, "L", false, 0, "")
			pdf.CellFormat(90, 6, tr(r[1]), "1", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	section("Circuit", [][2]string{
		{"Material", res.Pipe.Material},
		{"Nominal size", res.Pipe.NominalSize},
		{"Inner diameter", fmt.Sprintf("%.1f mm", res.Pipe.InnerDiameterMM)},
		{"Roughness", fmt.Sprintf("%.3f mm", res.Pipe.RoughnessMM)},
		{"Pump model", orDash(res.PumpModel)},
		{"Water temperature", fmt.Sprintf("%.0f °C", res.TemperatureC)},
		{"Flow", fmt.Sprintf("%.2f m³/h", res.FlowM3H)},
		{"Available head", fmt.Sprintf("%.2f mCE", res.AvailableHeadMCE)},
		{"Elbows", fmt.Sprintf("%d", in.Elbows)},
		{"Extra ζ", fmt.Sprintf("%.2f", in.ExtraDzeta)},
	})

	friction := "-"
	if res.FrictionFactor != nil {
		friction = fmt.Sprintf("%.5f (%d iterations)", *res.FrictionFactor, res.SolverIterations)
	}
	section("Hydraulics", [][2]string{
		{"Viscosity", fmt.Sprintf("%.4g m²/s (%s)", res.ViscosityM2S, res.ViscosityModel)},
		{"Velocity", fmt.Sprintf("%.3f m/s", res.VelocityMS)},
		{"Reynolds", fmt.Sprintf("%.0f", res.Reynolds)},
		{"Friction factor", friction},
		{"Loss per metre", fmt.Sprintf("%.2f mmCE/m (%.1f Pa/m)", res.LossPerMetreMMCE, res.LossPerMetrePa)},
		{"Singular losses", fmt.Sprintf("%.3f mCE", res.Losses.Singular)},
		{"Static deduction", fmt.Sprintf("%.3f mCE", res.Losses.Static)},
		{"Extra losses", fmt.Sprintf("%.3f mCE", res.Losses.Extra)},
	})

	section("Result", [][2]string{
		{"Outcome", string(res.Outcome)},
		{"Maximum length", fmt.Sprintf("%.1f m", res.MaxLengthM)},
	})

	if text := joinNotes(res.Notes, meta.Notes); text != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(text), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return "", err
	}
	return id, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}
