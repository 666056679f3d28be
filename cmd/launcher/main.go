package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/launch"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/params"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/runlog"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/scenario"
)

// #region main
func main() {
	scenarioPath := flag.String("scenario", "", "path to the YAML run description")
	parPath := flag.String("par", "", "path to the solver parameter file template")
	root := flag.String("root", envOr("SEISRUN_ROOT", "."), "solver installation root")
	out := flag.String("out", "", "save directory for generated inputs and outputs")
	mode := flag.String("mode", "forward", "run mode: forward or fwi")
	dbPath := flag.String("db", envOr("SEISRUN_DB", ""), "run ledger database; empty disables the ledger")
	runCommand := flag.String("run-command", "", "MPI launch prefix override")
	dryRun := flag.Bool("dry-run", false, "prepare all inputs but do not start the solver")
	flag.Parse()

	if *scenarioPath == "" || *parPath == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: launcher --scenario run.yaml --par template.inp --out dir [--mode forward|fwi] [--root dir] [--db runs.db] [--run-command \"mpirun -np N\"] [--dry-run]")
		os.Exit(2)
	}
	if *mode != "forward" && *mode != "fwi" {
		log.Fatalf("unknown mode %q", *mode)
	}

	sc, err := scenario.Load(*scenarioPath)
	if err != nil {
		log.Fatalf("load scenario: %v", err)
	}

	set, err := params.Load(*parPath)
	if err != nil {
		log.Fatalf("load parameter template: %v", err)
	}
	sc.ApplyOverrides(set)

	m, err := sc.BuildModel()
	if err != nil {
		log.Fatalf("build model: %v", err)
	}
	src := sc.BuildSources()
	rec := sc.BuildReceivers()

	var store *runlog.Store
	if *dbPath != "" {
		store, err = runlog.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("open run ledger: %v", err)
		}
		defer store.Close()
	}

	cmd := sc.RunCommand
	if *runCommand != "" {
		cmd = *runCommand
	}
	l := &launch.Launcher{
		Root:       *root,
		SaveDir:    *out,
		Name:       sc.Name,
		RunCommand: cmd,
		Disable:    *dryRun,
		Store:      store,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var record runlog.RunRecord
	switch *mode {
	case "forward":
		record, err = l.Forward(ctx, set, m, src, rec)
	case "fwi":
		sched, schedErr := sc.BuildSchedule()
		if schedErr != nil {
			log.Fatalf("build schedule: %v", schedErr)
		}
		record, err = l.FWI(ctx, set, m, src, rec, sched)
	}
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	if record.RunID != "" {
		fmt.Printf("run %s prepared in %s (dt=%g, nt=%d)\n", record.RunID, *out, record.DT, record.NT)
	} else {
		fmt.Printf("run prepared in %s (dt=%g, nt=%d)\n", *out, record.DT, record.NT)
	}
	if *dryRun {
		fmt.Println("dry run: solver not started")
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
