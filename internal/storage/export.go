package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
)

type exportData struct {
	Integrator    string             `json:"integrator"`
	Backend       string             `json:"backend"`
	Dt            float64            `json:"dt"`
	BlackHoleMass float64            `json:"black_hole_mass"`
	FrameCount    int                `json:"frame_count"`
	Frames        []Frame            `json:"frames"`
	Metrics       map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run to w as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, result *RunResult) error {
	data := exportData{
		Integrator:    meta.Integrator,
		Backend:       meta.Backend,
		Dt:            meta.Dt,
		BlackHoleMass: meta.BlackHoleMass,
		FrameCount:    len(result.Frames),
		Frames:        result.Frames,
		Metrics:       result.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONFile writes a run to path as indented JSON.
func ExportJSONFile(path string, meta RunMetadata, result *RunResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, result)
}

// ExportCSV writes the frame series to w in the same column layout the
// store uses on disk.
func ExportCSV(w io.Writer, result *RunResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if len(result.Frames) == 0 {
		return nil
	}

	header := []string{"time", "active", "energy"}
	for i := range result.Frames[0].Tracked {
		header = append(header,
			"p"+strconv.Itoa(i)+"_x", "p"+strconv.Itoa(i)+"_y", "p"+strconv.Itoa(i)+"_z")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, f := range result.Frames {
		row := []string{
			strconv.FormatFloat(f.Time, 'g', -1, 64),
			strconv.Itoa(f.Active),
			strconv.FormatFloat(f.Energy, 'g', -1, 64),
		}
		for _, p := range f.Tracked {
			row = append(row,
				strconv.FormatFloat(p.X, 'g', -1, 64),
				strconv.FormatFloat(p.Y, 'g', -1, 64),
				strconv.FormatFloat(p.Z, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
