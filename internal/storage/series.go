package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/polycryst/internal/engine"
	"github.com/san-kum/polycryst/internal/orientation"
	"github.com/san-kum/polycryst/internal/tensor"
)

// LoadSeries reads the snapshot series of a run.
func (s *Store) LoadSeries(runID string) ([]engine.Sample, error) {
	file, err := os.Open(filepath.Join(s.runDir(runID), seriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(seriesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", seriesFile, err)
	}
	if len(records) < 2 {
		return []engine.Sample{}, nil
	}

	samples := make([]engine.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		vals := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", seriesFile, i+2, seriesHeader[j], err)
			}
			vals[j] = v
		}
		var sigma, eps tensor.Vec6
		copy(sigma[:], vals[8:14])
		copy(eps[:], vals[14:20])
		samples = append(samples, engine.Sample{
			Time:            vals[0],
			Step:            int(vals[1]),
			Grains:          int(vals[2]),
			Recrystallized:  int(vals[3]),
			StrainIntensity: vals[4],
			StressIntensity: vals[5],
			MeanEnergy:      vals[6],
			MeanGrainSize:   vals[7],
			MeanSigma:       tensor.TensorFromVector(sigma),
			MeanEps:         tensor.TensorFromVector(eps),
		})
	}
	return samples, nil
}

// LoadPoles reads the pole vectors of one family, one slice per snapshot.
func (s *Store) LoadPoles(runID string, fam orientation.Family) ([][]tensor.Vec3, error) {
	name := PoleFile(fam)
	file, err := os.Open(filepath.Join(s.runDir(runID), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	var out [][]tensor.Vec3
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields)%3 != 0 {
			return nil, fmt.Errorf("%s line %d: %d values is not a whole number of vectors", name, line, len(fields))
		}
		poles := make([]tensor.Vec3, len(fields)/3)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", name, line, err)
			}
			poles[i/3][i%3] = v
		}
		out = append(out, poles)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
