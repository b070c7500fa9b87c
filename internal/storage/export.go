package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/polycryst/internal/engine"
)

type ExportData struct {
	Run    RunMetadata     `json:"run"`
	Series []engine.Sample `json:"series"`
}

// ExportJSON writes the metadata and series of a run as one JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Series: series})
}
