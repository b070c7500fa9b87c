package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/polycryst/internal/engine"
	"github.com/san-kum/polycryst/internal/orientation"
	"github.com/san-kum/polycryst/internal/tensor"
)

var seriesHeader = []string{
	"time", "step", "grains", "recrystallized",
	"strain_intensity", "stress_intensity", "mean_energy", "mean_grain_size",
	"sigma11", "sigma22", "sigma33", "sigma23", "sigma13", "sigma12",
	"eps11", "eps22", "eps33", "eps23", "eps13", "eps12",
}

// PoleFile is the file holding pole vectors of one family.
func PoleFile(f orientation.Family) string {
	return "pole_fig" + f.Name + ".dat"
}

type lineFile struct {
	f *os.File
	w *bufio.Writer
}

// Recorder writes the snapshots of one run into its directory. It is an
// engine observer.
type Recorder struct {
	store *Store
	meta  RunMetadata

	series *os.File
	csv    *csv.Writer
	orient lineFile
	poles  []lineFile
	closed bool
}

// Create starts a new run directory and writes its initial metadata.
func (s *Store) Create(name string, seed uint64, params engine.Params) (*Recorder, error) {
	meta := RunMetadata{
		ID:        newRunID(name),
		Name:      name,
		Timestamp: time.Now(),
		Seed:      seed,
		Params:    params,
	}
	dir := s.runDir(meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := s.writeMetadata(&meta); err != nil {
		return nil, err
	}

	r := &Recorder{store: s, meta: meta}
	var err error
	if r.series, err = os.Create(filepath.Join(dir, seriesFile)); err != nil {
		return nil, err
	}
	r.csv = csv.NewWriter(r.series)
	if err := r.csv.Write(seriesHeader); err != nil {
		r.Close()
		return nil, err
	}

	if r.orient, err = createLineFile(filepath.Join(dir, orientationsFile)); err != nil {
		r.Close()
		return nil, err
	}
	for _, fam := range orientation.Families {
		lf, err := createLineFile(filepath.Join(dir, PoleFile(fam)))
		if err != nil {
			r.Close()
			return nil, err
		}
		r.poles = append(r.poles, lf)
	}
	return r, nil
}

func createLineFile(path string) (lineFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return lineFile{}, err
	}
	return lineFile{f: f, w: bufio.NewWriter(f)}, nil
}

func (r *Recorder) ID() string { return r.meta.ID }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func (r *Recorder) OnSnapshot(s engine.Snapshot) error {
	if r.closed {
		return errors.New("storage: recorder closed")
	}

	row := []string{
		formatFloat(s.Time),
		strconv.Itoa(s.Step),
		strconv.Itoa(s.Grains),
		strconv.Itoa(s.Recrystallized),
		formatFloat(s.StrainIntensity),
		formatFloat(s.StressIntensity),
		formatFloat(s.MeanEnergy),
		formatFloat(s.MeanGrainSize),
	}
	for _, m := range []tensor.Mat3{s.MeanSigma, s.MeanEps} {
		for _, v := range tensor.VectorFromTensor(m) {
			row = append(row, formatFloat(v))
		}
	}
	if err := r.csv.Write(row); err != nil {
		return err
	}
	r.csv.Flush()
	if err := r.csv.Error(); err != nil {
		return err
	}

	for _, rot := range s.Orientations {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				r.orient.w.WriteString(formatFloat(rot[i][j]))
				r.orient.w.WriteByte('\t')
			}
		}
	}
	if err := endLine(r.orient.w); err != nil {
		return fmt.Errorf("write %s: %w", orientationsFile, err)
	}

	for k, fam := range orientation.Families {
		w := r.poles[k].w
		for _, p := range orientation.PoleFigure(s.Orientations, fam.Dir) {
			fmt.Fprintf(w, "%s\t%s\t%s\t", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
		}
		if err := endLine(w); err != nil {
			return fmt.Errorf("write %s: %w", PoleFile(fam), err)
		}
	}
	return nil
}

func endLine(w *bufio.Writer) error {
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// Finish records the outcome of the run and closes its files. runErr is the
// error the run stopped with, if any.
func (r *Recorder) Finish(res *engine.Result, metrics map[string]float64, runErr error) error {
	closeErr := r.Close()

	now := time.Now()
	r.meta.Finished = &now
	r.meta.Metrics = metrics
	if runErr != nil {
		r.meta.Error = runErr.Error()
	}
	if res != nil {
		f := res.Final
		r.meta.Summary = &Summary{
			StepsTaken:      res.StepsTaken,
			Nucleated:       res.Nucleated,
			Grains:          f.Grains,
			Recrystallized:  f.Recrystallized,
			StrainIntensity: f.StrainIntensity,
			StressIntensity: f.StressIntensity,
			MeanEnergy:      f.MeanEnergy,
			MeanGrainSize:   f.MeanGrainSize,
			ElapsedSeconds:  res.Elapsed.Seconds(),
		}
	}
	if err := r.store.writeMetadata(&r.meta); err != nil {
		return err
	}
	return closeErr
}

// Close flushes and closes the run files. It is safe to call more than once.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if r.csv != nil {
		r.csv.Flush()
		errs = append(errs, r.csv.Error())
	}
	if r.series != nil {
		errs = append(errs, r.series.Close())
	}
	for _, lf := range append([]lineFile{r.orient}, r.poles...) {
		if lf.f == nil {
			continue
		}
		errs = append(errs, lf.w.Flush(), lf.f.Close())
	}
	return errors.Join(errs...)
}
