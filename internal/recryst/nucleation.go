package recryst

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/slip"
)

// SubgrainFloor is the radius a subgrain is reset to after it nucleates.
const SubgrainFloor = 1e-17

// Eligibility selects which grains may nucleate.
type Eligibility int

const (
	AllGrains Eligibility = iota
	DeformedOnly
)

func ParseEligibility(s string) (Eligibility, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return AllGrains, nil
	case "deformed":
		return DeformedOnly, nil
	default:
		return AllGrains, fmt.Errorf("unknown nucleation eligibility %q (want all or deformed)", s)
	}
}

func (e Eligibility) String() string {
	if e == DeformedOnly {
		return "deformed"
	}
	return "all"
}

// Eligible reports whether grain id may nucleate under e.
func (e Eligibility) Eligible(t *grain.Table, id grain.ID) bool {
	return e == AllGrains || t.Status[id] == grain.Deformed
}

// SphereVolume is 4/3·π·r³.
func SphereVolume(r float64) float64 {
	return 4.0 / 3.0 * math.Pi * r * r * r
}

// SphereRadius inverts SphereVolume.
func SphereRadius(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Cbrt(v * 3 / (4 * math.Pi))
}

// DriveForce returns Ē - 3·egb/r, or zero for a non-positive radius.
func DriveForce(meanEnergy, egb, r float64) float64 {
	if r <= 0 {
		return 0
	}
	return meanEnergy - 3*egb/r
}

// UpdateDriveForce refreshes the subgrain driving forces of eligible grains.
// Ineligible grains keep zero driving force.
func UpdateDriveForce(t *grain.Table, meanEnergy, egb float64, e Eligibility) {
	grain.ForEach(t, func(id grain.ID) {
		df := t.DriveForce[id]
		if !e.Eligible(t, id) {
			clear(df)
			return
		}
		for s, r := range t.SubGrains[id] {
			df[s] = DriveForce(meanEnergy, egb, r)
		}
	})
}

// Event is one subgrain turning into a new grain.
type Event struct {
	Parent       grain.ID
	Subgrain     int
	Radius       float64
	ParentBefore float64
	ParentAfter  float64
}

// Detect lists the nucleation events of this step without changing t. Within
// a grain, subgrains are visited in order and each accepted nucleus reduces
// the parent volume seen by the next one. Events are ordered by parent and
// subgrain index.
func Detect(ctx context.Context, t *grain.Table, e Eligibility, workers int) ([]Event, error) {
	var (
		mu     sync.Mutex
		events []Event
	)
	err := grain.ParallelErr(ctx, t.Len(), workers, func(_ context.Context, start, end int) error {
		var local []Event
		for i := start; i < end; i++ {
			local = appendGrainEvents(local, t, grain.ID(i), e)
		}
		if len(local) == 0 {
			return nil
		}
		mu.Lock()
		events = append(events, local...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Parent != events[j].Parent {
			return events[i].Parent < events[j].Parent
		}
		return events[i].Subgrain < events[j].Subgrain
	})
	return events, nil
}

func appendGrainEvents(events []Event, t *grain.Table, id grain.ID, e Eligibility) []Event {
	if !e.Eligible(t, id) {
		return events
	}
	radius := t.GrainSize[id]
	volume := SphereVolume(radius)
	for s, df := range t.DriveForce[id] {
		if df <= 0 {
			continue
		}
		rs := t.SubGrains[id][s]
		vs := SphereVolume(rs)
		if volume-vs <= 0 {
			continue
		}
		volume -= vs
		after := SphereRadius(volume)
		events = append(events, Event{
			Parent:       id,
			Subgrain:     s,
			Radius:       rs,
			ParentBefore: radius,
			ParentAfter:  after,
		})
		radius = after
	}
	return events
}

// Spawner builds the row of a grain nucleated with the given radius.
type Spawner func(radius float64) (grain.Record, error)

// Apply shrinks the parents, retires the nucleated subgrains and appends one
// new grain per event, in event order. It returns the IDs of the new grains.
func Apply(t *grain.Table, events []Event, hp slip.HallPetch, spawn Spawner) ([]grain.ID, error) {
	ids := make([]grain.ID, 0, len(events))
	for _, ev := range events {
		if !t.Contains(ev.Parent) || ev.Subgrain < 0 || ev.Subgrain >= len(t.SubGrains[ev.Parent]) {
			return ids, fmt.Errorf("%w: nucleation event for grain %d subgrain %d", grain.ErrInconsistent, ev.Parent, ev.Subgrain)
		}

		p := ev.Parent
		hp.Resize(&t.TauC[p], ev.ParentBefore, ev.ParentAfter)
		t.GrainSize[p] = ev.ParentAfter
		t.SubGrains[p][ev.Subgrain] = SubgrainFloor
		t.DriveForce[p][ev.Subgrain] = 0

		rec, err := spawn(ev.Radius)
		if err != nil {
			return ids, fmt.Errorf("spawn grain from %d: %w", p, err)
		}
		ids = append(ids, t.Append(rec))
	}
	return ids, nil
}
