package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"text2phenotype.com/refnorm/api"
	"text2phenotype.com/refnorm/logger"
	"text2phenotype.com/refnorm/pipeline"
	"text2phenotype.com/refnorm/store"
	"text2phenotype.com/refnorm/tabular"
	"text2phenotype.com/refnorm/taxonomy"
	"text2phenotype.com/refnorm/watch"
	"text2phenotype.com/refnorm/worker"
)

type Config struct {
	ConfigPath    string `envconfig:"REFNORM_CONFIG_PATH"`
	WatchDir      string `envconfig:"REFNORM_WATCH_DIR"`
	DBPath        string `envconfig:"REFNORM_DB_PATH"`
	RestAPIActive bool   `envconfig:"REFNORM_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"REFNORM_REST_API_PORT" default:"10000"`
}

const pipelineStartMaxRetries = 5

func main() {
	_ = godotenv.Load()
	logger.SetupLogging()
	mainLogger := logger.NewLogger("Main")
	fatalErrLogger := mainLogger.Fatal().Caller()
	inputPath := flag.String("input", "", "normalize one table file and exit")
	outputPath := flag.String("output", "", "enriched table path for -input (default: next to the input)")
	dbPath := flag.String("db", "", "sqlite sink for normalized rows and run summaries")
	checkVocab := flag.Bool("check-vocab", false, "a bool")
	wrap := flag.Bool("wrap", false, "supervise the given command, relaying its stderr as JSON logs")
	flag.Parse()

	// supervise a child process
	if *wrap {
		if flag.NArg() == 0 {
			fatalErrLogger.Msg("No command given to wrap")
			os.Exit(1)
		}
		logger.WrapProcess(flag.Arg(0), flag.Args()[1:]...)
		return
	}
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}
	if *dbPath == "" {
		*dbPath = config.DBPath
	}
	params := pipeline.GetDefaultReferralParams(config.ConfigPath)

	// print compiled vocabularies
	if *checkVocab {
		exam, organs, err := pipeline.Vocabularies(params)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Failed to compile vocabularies")
			os.Exit(1)
		}
		printVocabulary(exam)
		printVocabulary(organs)
		return
	}

	// one-shot batch run
	if *inputPath != "" {
		if err := runBatch(params, *inputPath, *outputPath, *dbPath); err != nil {
			fatalErrLogger.Err(err).Msg("Batch run failed")
			os.Exit(1)
		}
		return
	}

	//Load Pipeline
	pipelineChannel := make(chan pipeline.Pipeline)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			ppln, err := pipeline.NewReferral(params)
			if err != nil {
				mainLogger.Err(err).Msg("Failed to start referral pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			mainLogger.Info().Msg("Pipeline loaded")
			pipelineChannel <- ppln
			return
		}
		fatalErrLogger.Msg("Could not start pipelines after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until pipeline loads
	ppln := <-pipelineChannel

	var runStore *store.Store
	if *dbPath != "" {
		opened, err := store.Open(context.Background(), *dbPath)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Failed to open run store")
			os.Exit(1)
		}
		runStore = opened
	}

	if config.RestAPIActive {
		go func() {
			mainLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: ppln,
				Store:    runStore,
			}
			http.HandleFunc("/process", api.WithRequestLogging(apiRequest.ProcessData))
			http.HandleFunc("/health", api.WithRequestLogging(apiRequest.Health))
			http.HandleFunc("/runs", api.WithRequestLogging(apiRequest.Runs))
			http.HandleFunc("/runs/", api.WithRequestLogging(apiRequest.RunSummary))
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			mainLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	if config.WatchDir != "" {
		exam, organs, err := pipeline.Vocabularies(params)
		if err != nil {
			mainLogger.Fatal().Err(err).Msg("Failed to compile vocabularies")
			os.Exit(1)
		}
		watcher := watch.New(watch.Params{
			Dir:      config.WatchDir,
			Pipeline: ppln,
			Store:    runStore,
			Exam:     exam,
			Organs:   organs,
		})
		if err := watcher.Start(context.Background()); err != nil {
			mainLogger.Fatal().Err(err).Msg("Failed to start directory watcher")
			os.Exit(1)
		}
		go func() {
			if err := watcher.Backfill(context.Background()); err != nil {
				mainLogger.Err(err).Msg("Drop directory backfill failed")
			}
		}()
	}

	mainLogger.Info().Msg("Start Refnorm Worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			mainLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			mainLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

func runBatch(params pipeline.ReferralParams, inputPath, outputPath, dbPath string) error {
	batchLogger := logger.NewLogger("Batch")

	ppln, err := pipeline.NewReferral(params)
	if err != nil {
		return err
	}

	table, err := tabular.DecodeFile(inputPath, tabular.Options{})
	if err != nil {
		return err
	}

	request := pipeline.Request{
		Tid:    strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)),
		Table:  table,
		Fields: tabular.DefaultFieldCandidates().DetectFields(table.Fields),
	}
	result, ok := <-ppln(request)
	if !ok {
		return errors.New("pipeline channel was closed unexpectedly")
	}
	if result.Err != nil {
		return result.Err
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".refnorm.csv"
	}
	if err := tabular.EncodeFile(outputPath, result.Table); err != nil {
		return err
	}

	if dbPath != "" {
		runStore, err := store.Open(context.Background(), dbPath)
		if err != nil {
			return err
		}
		defer runStore.Close()
		if err := runStore.SaveRun(context.Background(), filepath.Base(inputPath), result); err != nil {
			return err
		}
	}

	batchLogger.Info().
		Int("rows", result.Summary.Rows).
		Int("null_exam", result.Summary.NullExam).
		Int("null_organ", result.Summary.NullOrgan).
		Int("null_contrast", result.Summary.NullContrast).
		Int64("duration_ms", result.Summary.DurationMs).
		Str("results_path", outputPath).
		Msg("Finished batch run")
	return nil
}

func printVocabulary(vocabulary *taxonomy.Vocabulary) {
	fmt.Printf("%s (fingerprint %x)\n", vocabulary.Name(), vocabulary.Fingerprint())
	for bit, name := range vocabulary.CategoryNames() {
		fmt.Printf("  bit %2d  %s\n", bit, name)
	}
}
