package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"pkg.jsn.cam/forkreduce/internal/ledger"
	"pkg.jsn.cam/forkreduce/jobs"
	"pkg.jsn.cam/forkreduce/jobs/wordfind"
	"pkg.jsn.cam/forkreduce/pkg/forkreduce"
	"pkg.jsn.cam/forkreduce/pkg/storage"
)

var (
	input      = flag.String("input", "", "Path to the input file")
	splits     = flag.Int("splits", 4, "Number of splits (map parallelism)")
	jobName    = flag.String("job", "", "Registered job to run (see -list)")
	word       = flag.String("word", "", "Search word for the wordfind job")
	dir        = flag.String("dir", ".", "Job working directory")
	ledgerPath = flag.String("ledger", "", "Path to bbolt run ledger (empty = no persistence)")
	list       = flag.Bool("list", false, "List registered jobs and exit")
	history    = flag.Bool("history", false, "Print recorded runs from the ledger and exit")
)

func main() {
	flag.Parse()

	if *list {
		listJobs()
		return
	}
	if *history {
		printHistory(*ledgerPath)
		return
	}

	runJob()
}

func listJobs() {
	for _, name := range jobs.Names() {
		job, _ := jobs.Get(name)
		fmt.Printf("%-14s %s\n", name, job.Description)
	}
}

func runJob() {
	if *input == "" {
		log.Fatal("input is required")
	}
	if *jobName == "" {
		log.Fatal("job is required (see -list)")
	}

	job, ok := jobs.Get(*jobName)
	if !ok {
		log.Fatalf("unknown job %q (see -list)", *jobName)
	}

	info, err := os.Stat(*input)
	if err != nil {
		log.Fatalf("stat input: %v", err)
	}
	fmt.Printf("Input:  %s (%s)\n", *input, humanize.Bytes(uint64(info.Size())))
	fmt.Printf("Job:    %s, %d splits\n", *jobName, *splits)

	engine, err := forkreduce.New(forkreduce.Options{Dir: *dir, LedgerPath: *ledgerPath})
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}
	defer engine.Close()

	bar := progressbar.Default(int64(*splits), "map")
	spec := &forkreduce.JobSpec{
		InputPath:  *input,
		SplitCount: *splits,
		Map:        job.Map,
		Reduce:     job.Reduce,
		OnProgress: func(done, total int) {
			_ = bar.Set(done)
		},
	}
	if *jobName == "wordfind" {
		if *word == "" {
			log.Fatal("wordfind requires -word")
		}
		spec.UserData = &wordfind.Params{Word: *word}
	}

	result := &forkreduce.JobResult{
		MapWorkerIDs: make([]forkreduce.WorkerID, *splits),
	}
	if err := engine.Run(spec, result); err != nil {
		log.Fatalf("run job: %v", err)
	}

	fmt.Printf("\nJob %s finished in %v\n", result.JobID, result.ProcessingTime)
	fmt.Printf("  Map workers:   %v\n", result.MapWorkerIDs)
	fmt.Printf("  Reduce worker: %v\n", result.ReduceWorkerID)
	fmt.Printf("  Result file:   %s\n", filepath.Join(*dir, "mr.rst"))
}

func printHistory(path string) {
	if path == "" {
		log.Fatal("history requires -ledger")
	}

	backend, err := storage.NewBboltBackend(path)
	if err != nil {
		log.Fatalf("open ledger: %v", err)
	}
	l, err := ledger.Open(backend)
	if err != nil {
		backend.Close()
		log.Fatalf("open ledger: %v", err)
	}
	defer l.Close()

	runs, err := l.Runs()
	if err != nil {
		log.Fatalf("read ledger: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return
	}

	fmt.Printf("%-36s %-25s %7s %12s\n", "JOB ID", "INPUT", "SPLITS", "ELAPSED")
	for _, rec := range runs {
		fmt.Printf("%-36s %-25s %7d %10dus\n",
			rec.JobID, rec.InputPath, rec.SplitCount, rec.ElapsedMicros)
	}
}
