package kinematics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/polycryst/internal/tensor"
)

var (
	ErrNonMonotonic = errors.New("kinematics: trajectory queried backwards in time")
	ErrMalformed    = errors.New("kinematics: malformed trajectory")
	ErrUnknownPath  = errors.New("kinematics: unknown loading")
)

// InputError locates a problem in a trajectory file.
type InputError struct {
	File string
	Line int
	Err  error
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Path yields the sample-frame velocity gradient at a given time.
type Path interface {
	At(time float64) (tensor.Mat3, error)
}

// Constant is a time-independent velocity gradient.
type Constant struct {
	L tensor.Mat3
}

func (c Constant) At(float64) (tensor.Mat3, error) { return c.L, nil }

// Interpolation selects how a Trajectory fills the time between waypoints.
type Interpolation int

const (
	// Step holds the last waypoint at or before the query time.
	Step Interpolation = iota
	// Linear interpolates between the bracketing waypoints.
	Linear
)

func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(s) {
	case "", "step":
		return Step, nil
	case "linear":
		return Linear, nil
	default:
		return Step, fmt.Errorf("unknown interpolation %q", s)
	}
}

// Waypoint is one prescribed gradient.
type Waypoint struct {
	Time float64
	L    tensor.Mat3
}

// Trajectory is a piecewise velocity gradient read from a file. Queries must
// not go back in time, which lets the cursor advance without searching.
type Trajectory struct {
	points []Waypoint
	mode   Interpolation
	cursor int
	last   float64
	used   bool
}

// NewTrajectory validates the waypoints, which must be in non-decreasing time
// order.
func NewTrajectory(points []Waypoint, mode Interpolation) (*Trajectory, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no waypoints", ErrMalformed)
	}
	if !sort.SliceIsSorted(points, func(i, j int) bool { return points[i].Time < points[j].Time }) {
		return nil, fmt.Errorf("%w: waypoint times decrease", ErrMalformed)
	}
	return &Trajectory{points: points, mode: mode}, nil
}

func (tr *Trajectory) Len() int { return len(tr.points) }

func (tr *Trajectory) At(time float64) (tensor.Mat3, error) {
	if tr.used && time < tr.last {
		return tensor.Mat3{}, fmt.Errorf("%w: t=%g after t=%g", ErrNonMonotonic, time, tr.last)
	}
	tr.used = true
	tr.last = time

	for tr.cursor+1 < len(tr.points) && tr.points[tr.cursor+1].Time <= time {
		tr.cursor++
	}

	cur := tr.points[tr.cursor]
	if tr.mode == Step || time <= cur.Time || tr.cursor+1 == len(tr.points) {
		return cur.L, nil
	}

	next := tr.points[tr.cursor+1]
	span := next.Time - cur.Time
	if span <= 0 {
		return next.L, nil
	}
	w := (time - cur.Time) / span
	return cur.L.Scale(1 - w).Add(next.L.Scale(w)), nil
}

// LoadTrajectory reads rows of "time c0 c1 c2 c3 c4 c5", where the
// components fill the symmetric gradient [[c0 c1 c2] [c1 c3 c4] [c2 c4 c5]].
// Blank lines and lines starting with '#' are skipped.
func LoadTrajectory(r io.Reader, name string, mode Interpolation) (*Trajectory, error) {
	var points []Waypoint

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 7 {
			return nil, &InputError{File: name, Line: line, Err: fmt.Errorf("%w: want 7 values, got %d", ErrMalformed, len(fields))}
		}
		var vals [7]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &InputError{File: name, Line: line, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
			}
			vals[i] = v
		}
		if n := len(points); n > 0 && vals[0] < points[n-1].Time {
			return nil, &InputError{File: name, Line: line, Err: fmt.Errorf("%w: time %g before %g", ErrMalformed, vals[0], points[n-1].Time)}
		}

		c := vals[1:]
		points = append(points, Waypoint{
			Time: vals[0],
			L: tensor.Mat3{
				{c[0], c[1], c[2]},
				{c[1], c[3], c[4]},
				{c[2], c[4], c[5]},
			},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, &InputError{File: name, Err: err}
	}
	if len(points) == 0 {
		return nil, &InputError{File: name, Err: fmt.Errorf("%w: no waypoints", ErrMalformed)}
	}
	return NewTrajectory(points, mode)
}

// LoadTrajectoryFile opens path and reads it with LoadTrajectory.
func LoadTrajectoryFile(path string, mode Interpolation) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{File: path, Err: err}
	}
	defer f.Close()
	return LoadTrajectory(f, path, mode)
}
