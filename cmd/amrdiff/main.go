package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"amrdiff/internal/config"
	"amrdiff/internal/diff"
	"amrdiff/internal/logger"
	"amrdiff/internal/pipeline"
	"amrdiff/internal/render"
	"amrdiff/internal/stats"
	"amrdiff/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "amrdiff",
		Short: "Compare AMR annotations and render their differences",
	}
	configPath string
	dbPath     string

	format       string
	outDir       string
	noStore      bool
	crossLingual bool
	src2tgt      string
	tgt2src      string
	showStats    bool

	runID string
	jsonl string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "amrdiff.yaml", "Path to the YAML configuration")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the diff database (SQLite); overrides db_path")

	for _, cmd := range []*cobra.Command{diffCmd, disagreeCmd} {
		cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: dot, mermaid or json")
		cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for rendered diffs; empty string keeps the configured one")
		cmd.Flags().BoolVar(&noStore, "no-db", false, "Do not persist the run")
		cmd.Flags().BoolVar(&crossLingual, "cross-lingual", false, "Treat constants as alignable nodes")
		cmd.Flags().StringVar(&src2tgt, "src2tgt", "", "GIZA n-best file with gold tokens as source")
		cmd.Flags().StringVar(&tgt2src, "tgt2src", "", "GIZA n-best file with test tokens as source")
		cmd.Flags().BoolVar(&showStats, "stats", false, "Print edge statistics after the run")
	}
	statsCmd.Flags().StringVar(&runID, "run", "", "Stored run to analyze")
	statsCmd.Flags().StringVar(&jsonl, "jsonl", "", "File of JSON diff graphs, one per line")
	exportCmd.Flags().StringVar(&runID, "run", "", "Stored run to export")
	showCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: dot, mermaid or json")

	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(disagreeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = outDir
	}
	if crossLingual {
		cfg.CrossLingual = true
	}
	if src2tgt != "" || tgt2src != "" {
		cfg.Alignment.Src2Tgt = src2tgt
		cfg.Alignment.Tgt2Src = tgt2src
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// initStore initializes the SQLite store.
func initStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	return storage.NewSQLiteStore(cfg.DBPath)
}

// newJob wires a job for the diff and disagree commands.
func newJob(cmd *cobra.Command) (*pipeline.Job, func()) {
	cfg := loadConfig(cmd)
	job := &pipeline.Job{
		Config: cfg,
		Log:    logger.New(cfg.LogLevel, os.Stderr),
	}
	if showStats {
		job.Stats = stats.NewAnalyzer()
	}
	if cfg.Evidence() {
		fmt.Printf("🔗 Using alignment evidence: %s, %s\n", cfg.Alignment.Src2Tgt, cfg.Alignment.Tgt2Src)
	}
	if noStore {
		return job, func() {}
	}

	store, err := initStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	job.Store = store
	return job, func() { store.Close() }
}

func report(job *pipeline.Job, res *pipeline.JobResult) {
	fmt.Printf("✅ Compared %d pairs, skipped %d.\n", res.Summary.Pairs, res.Summary.Skipped)
	if res.Written > 0 {
		fmt.Printf("📄 Wrote %d diffs to %s\n", res.Written, job.Config.Output.Dir)
	}
	if res.Run != nil {
		fmt.Printf("💾 Saved run %s to %s\n", res.Run.ID, job.Config.DBPath)
	}
	if job.Stats != nil {
		fmt.Println()
		if _, err := job.Stats.WriteTo(os.Stdout); err != nil {
			log.Fatalf("Failed to print statistics: %v", err)
		}
	}
}

var diffCmd = &cobra.Command{
	Use:   "diff <test> <gold>",
	Short: "Compare a test annotation file against a gold file, block by block",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		job, done := newJob(cmd)
		defer done()

		fmt.Printf("🚀 Comparing %s against %s...\n", args[0], args[1])
		res, err := job.Diff(context.Background(), args[0], args[1])
		if err != nil {
			log.Fatalf("Comparison failed: %v", err)
		}
		report(job, res)
	},
}

var disagreeCmd = &cobra.Command{
	Use:   "disagree <file>",
	Short: "Compare every annotator of a sentence against the first one",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		job, done := newJob(cmd)
		defer done()

		fmt.Printf("🚀 Comparing annotators in %s...\n", args[0])
		res, err := job.Disagree(context.Background(), args[0])
		if err != nil {
			log.Fatalf("Comparison failed: %v", err)
		}
		report(job, res)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print edge statistics of a stored run or a JSON-lines export",
	Run: func(cmd *cobra.Command, args []string) {
		if (runID == "") == (jsonl == "") {
			log.Fatalf("Exactly one of --run or --jsonl is required")
		}

		an := stats.NewAnalyzer()
		if jsonl != "" {
			n, err := addJSONLines(an, jsonl)
			if err != nil {
				log.Fatalf("Failed to read %s: %v", jsonl, err)
			}
			fmt.Fprintf(os.Stderr, "📊 Read %d graphs from %s\n", n, jsonl)
		} else {
			cfg := loadConfig(cmd)
			store, err := initStore(cfg)
			if err != nil {
				log.Fatalf("Failed to initialize database: %v", err)
			}
			defer store.Close()

			recs, err := store.LoadDiffs(context.Background(), runID)
			if err != nil {
				log.Fatalf("Failed to load run %s: %v", runID, err)
			}
			for _, rec := range recs {
				an.Add(rec.Graph)
			}
		}

		if _, err := an.WriteTo(os.Stdout); err != nil {
			log.Fatalf("Failed to print statistics: %v", err)
		}
	},
}

func addJSONLines(an *stats.Analyzer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		g, err := diff.Decode([]byte(line))
		if err != nil {
			return n, fmt.Errorf("line %d: %w", n+1, err)
		}
		an.Add(g)
		n++
	}
	return n, sc.Err()
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the diff graphs of a stored run as JSON lines",
	Run: func(cmd *cobra.Command, args []string) {
		if runID == "" {
			log.Fatalf("--run is required")
		}
		cfg := loadConfig(cmd)
		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		recs, err := store.LoadDiffs(context.Background(), runID)
		if err != nil {
			log.Fatalf("Failed to load run %s: %v", runID, err)
		}
		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()
		enc := json.NewEncoder(w)
		for _, rec := range recs {
			if err := enc.Encode(rec.Graph); err != nil {
				log.Fatalf("Failed to encode %s: %v", rec.SentenceID, err)
			}
		}
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		runs, err := store.ListRuns(context.Background())
		if err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs stored.")
			return
		}
		for _, r := range runs {
			mode := "identity"
			if r.Evidence {
				mode = "evidence"
			}
			fmt.Printf("%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), mode, r.Source)
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show <sentence-id>",
	Short: "Print every stored diff of a sentence",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		f, err := render.ParseFormat(cfg.Output.Format)
		if err != nil {
			log.Fatalf("Invalid format: %v", err)
		}
		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		recs, err := store.FindBySentence(context.Background(), args[0])
		if err != nil {
			log.Fatalf("Failed to load diffs: %v", err)
		}
		if len(recs) == 0 {
			fmt.Printf("No diffs stored for %s.\n", args[0])
			return
		}
		for _, rec := range recs {
			fmt.Printf("🔍 run %s, %s vs %s, score %.4f\n", rec.RunID, rec.TestAnnotator, rec.GoldAnnotator, rec.Score)
			for _, line := range rec.Report {
				fmt.Println(line)
			}
			out, err := render.Render(rec.Graph, f, rec.SentenceID)
			if err != nil {
				log.Fatalf("Failed to render %s: %v", rec.ID, err)
			}
			fmt.Println(string(out))
		}
	},
}
