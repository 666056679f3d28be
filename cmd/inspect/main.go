package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/runlog"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run ledger database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/runs.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	store, err := runlog.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(store, *runID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string  `json:"run_id"`
	Name      string  `json:"name"`
	Mode      string  `json:"mode"`
	Grid      string  `json:"grid"`
	DT        float64 `json:"dt"`
	NT        int     `json:"nt"`
	MaxFreq   float64 `json:"max_freq,omitempty"`
	CreatedAt string  `json:"created_at"`
	SaveDir   string  `json:"save_dir"`
}

func runListMode(store *runlog.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:     r.RunID,
			Name:      r.Name,
			Mode:      modeName(r.Mode),
			Grid:      fmt.Sprintf("%dx%d@%g", r.NX, r.NY, r.DH),
			DT:        r.DT,
			NT:        r.NT,
			MaxFreq:   r.MaxFreq,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
			SaveDir:   r.SaveDir,
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-14s  %-8s  %-12s  %9s  %7s  %7s  %s\n",
		"Run", "Name", "Mode", "Grid", "DT", "NT", "Fmax", "Time")
	fmt.Printf("%-10s+-%-14s+-%-8s+-%-12s+-%9s+-%7s+-%7s+-%s\n",
		"----------", "--------------", "--------", "------------",
		"---------", "-------", "-------", "--------------------")
	for _, r := range rows {
		fmax := "—"
		if r.MaxFreq > 0 {
			fmax = fmt.Sprintf("%.2f", r.MaxFreq)
		}
		fmt.Printf("%-10s  %-14s  %-8s  %-12s  %9.5f  %7d  %7s  %s\n",
			shortID(r.RunID), r.Name, r.Mode, r.Grid, r.DT, r.NT, fmax, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	listRow
	Notes  string            `json:"notes,omitempty"`
	Stages []stageRowDisplay `json:"stages,omitempty"`
}

type stageRowDisplay struct {
	Position int     `json:"position"`
	FCLow    float64 `json:"fc_low"`
	FCHigh   float64 `json:"fc_high"`
	LNorm    int     `json:"lnorm"`
}

func runDetailMode(store *runlog.Store, runID string, jsonOut bool) error {
	r, stages, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		listRow: listRow{
			RunID:     r.RunID,
			Name:      r.Name,
			Mode:      modeName(r.Mode),
			Grid:      fmt.Sprintf("%dx%d@%g", r.NX, r.NY, r.DH),
			DT:        r.DT,
			NT:        r.NT,
			MaxFreq:   r.MaxFreq,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
			SaveDir:   r.SaveDir,
		},
		Notes: r.Notes,
	}
	for _, st := range stages {
		out.Stages = append(out.Stages, stageRowDisplay{
			Position: st.Position, FCLow: st.FCLow, FCHigh: st.FCHigh, LNorm: st.LNorm,
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:       %s\n", out.RunID)
	fmt.Printf("Name:      %s\n", out.Name)
	fmt.Printf("Mode:      %s\n", out.Mode)
	fmt.Printf("Grid:      %s\n", out.Grid)
	fmt.Printf("DT:        %g s\n", out.DT)
	fmt.Printf("NT:        %d\n", out.NT)
	if out.MaxFreq > 0 {
		fmt.Printf("Fmax:      %.2f Hz\n", out.MaxFreq)
	}
	fmt.Printf("Created:   %s\n", out.CreatedAt)
	fmt.Printf("Save dir:  %s\n", out.SaveDir)
	if out.Notes != "" {
		fmt.Printf("Notes:     %s\n", out.Notes)
	}

	if len(out.Stages) > 0 {
		fmt.Printf("\nStages:\n")
		fmt.Printf("  %-4s  %8s  %8s  %5s\n", "#", "FC_low", "FC_high", "LNORM")
		for _, st := range out.Stages {
			fmt.Printf("  %-4d  %8.2f  %8.2f  %5d\n", st.Position, st.FCLow, st.FCHigh, st.LNorm)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func modeName(mode int) string {
	if mode == 1 {
		return "fwi"
	}
	return "forward"
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
