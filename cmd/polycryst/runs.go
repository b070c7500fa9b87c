package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/polycryst/internal/export"
	"github.com/san-kum/polycryst/internal/orientation"
	"github.com/san-kum/polycryst/internal/storage"
	"github.com/san-kum/polycryst/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIMESTAMP\tSTEPS\tGRAINS\tSTRESS\tSTATUS")
	for _, run := range runs {
		steps, grainCount, stress := "-", "-", "-"
		if s := run.Summary; s != nil {
			steps = fmt.Sprint(s.StepsTaken)
			grainCount = fmt.Sprint(s.Grains)
			stress = fmt.Sprintf("%.4g", s.StressIntensity)
		}
		status := "ok"
		switch {
		case run.Error != "":
			status = "failed"
		case run.Finished == nil:
			status = "incomplete"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.Name, run.Timestamp.Format("2006-01-02 15:04:05"),
			steps, grainCount, stress, status)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series) < 2 {
		return fmt.Errorf("not enough samples to plot: %d", len(series))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(series))

	plots := []struct {
		caption string
		value   func(i int) float64
	}{
		{"stress intensity (MPa)", func(i int) float64 { return series[i].StressIntensity }},
		{"strain intensity", func(i int) float64 { return series[i].StrainIntensity }},
		{"mean stored energy", func(i int) float64 { return series[i].MeanEnergy }},
		{"grain count", func(i int) float64 { return float64(series[i].Grains) }},
	}
	for _, p := range plots {
		data := make([]float64, len(series))
		for i := range series {
			data[i] = p.value(i)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		))
		fmt.Println()
	}

	if svgOut != "" {
		points := make([]export.Point, len(series))
		for i, s := range series {
			points[i] = export.Point{X: s.StrainIntensity, Y: s.StressIntensity}
		}
		if err := os.WriteFile(svgOut, []byte(export.CurveToSVG(points, 640, 480, "#b87333")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func parseFamily(name string) (orientation.Family, error) {
	for _, f := range orientation.Families {
		if f.Name == name {
			return f, nil
		}
	}
	return orientation.Family{}, fmt.Errorf("unknown pole family %q (want 100, 110 or 111)", name)
}

func showPoles(cmd *cobra.Command, args []string) error {
	runID := args[0]

	fam, err := parseFamily(family)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	snaps, err := st.LoadPoles(runID, fam)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("run %s has no pole data", runID)
	}

	idx := snapshot
	if idx < 0 {
		idx += len(snaps)
	}
	if idx < 0 || idx >= len(snaps) {
		return fmt.Errorf("snapshot %d out of range [0, %d)", snapshot, len(snaps))
	}
	poles := snaps[idx]

	canvas := viz.NewCanvas(30, 15)
	viz.DrawPoleFigure(canvas, poles)
	fmt.Printf("{%s} pole figure, snapshot %d/%d, %d poles\n", fam.Name, idx, len(snaps)-1, len(poles))
	fmt.Println(canvas.String())

	if svgOut != "" {
		title := fmt.Sprintf("{%s} %s", fam.Name, runID)
		if err := os.WriteFile(svgOut, []byte(export.PoleFigureSVG(poles, 400, title)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	var w io.Writer = os.Stdout
	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	st := storage.New(dataDir)
	if err := st.ExportJSON(runID, w); err != nil {
		return err
	}
	if jsonOut != "" {
		fmt.Fprintf(os.Stderr, "exported to %s\n", jsonOut)
	}
	return nil
}
