package pipeline

import (
	"fmt"
	"strings"
	"time"

	"text2phenotype.com/refnorm/logger"
	"text2phenotype.com/refnorm/referral"
	"text2phenotype.com/refnorm/taxonomy"
	"text2phenotype.com/refnorm/types"
)

// ReferralParams configures the referral pipeline. An empty ConfigPath runs
// on the built-in vocabularies.
type ReferralParams struct {
	ConfigPath string `json:"config_path"`
}

func GetDefaultReferralParams(configPath string) ReferralParams {
	return ReferralParams{ConfigPath: configPath}
}

// NewReferral compiles the vocabularies once and returns the pipeline
// closure. The closure validates each request before touching its table and
// answers on the returned channel with exactly one result.
func NewReferral(params ReferralParams) (Pipeline, error) {
	pplnLogger := logger.NewLogger("Referral pipeline")
	errLogger := pplnLogger.With().Caller().Logger()
	pplnLogger.Info().
		Interface("params", params).
		Msg("Starting referral pipeline (see parameters in 'params' field)")

	var cfg types.Configuration
	if params.ConfigPath != "" {
		loaded, err := types.LoadConfiguration(params.ConfigPath)
		if err != nil {
			errLogger.Err(err).
				Str("config_path", params.ConfigPath).
				Msg("Failed to load vocabulary configuration")
			return nil, err
		}
		cfg = loaded
	}

	segmenter := newSegmenter(cfg.Referral)

	examVocabulary, err := newVocabulary(taxonomy.ExamVocabularyName, cfg.ExamCategories, taxonomy.DefaultExamCategories)
	if err != nil {
		errLogger.Err(err).Msg("Failed to build exam vocabulary")
		return nil, err
	}

	organVocabulary, err := newVocabulary(taxonomy.OrganVocabularyName, cfg.OrganClusters, taxonomy.DefaultOrganClusters)
	if err != nil {
		errLogger.Err(err).Msg("Failed to build organ vocabulary")
		return nil, err
	}

	contrastMap := newContrastMap(cfg.Contrast)

	pplnLogger.Info().
		Str("exam_fingerprint", fmt.Sprintf("%x", examVocabulary.Fingerprint())).
		Str("organ_fingerprint", fmt.Sprintf("%x", organVocabulary.Fingerprint())).
		Msg("Vocabularies ready")

	return func(request Request) <-chan Result {
		responseChan := make(chan Result, 1)
		pplnLog := pplnLogger.With().Str("tid", request.Tid).Logger()

		go func() {
			started := time.Now()
			pplnLog.Info().Msg("Started referral pipeline")

			if request.Table == nil {
				responseChan <- Result{Err: fmt.Errorf("request %s carries no table", request.Tid)}
				return
			}

			fields := request.Fields.resolve()

			required := []string{fields.Exam, fields.Organ, fields.Contrast}
			if fields.Note != "" {
				required = []string{fields.Note}
			}
			if missing := request.Table.MissingFields(required...); missing != nil {
				err := fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
				pplnLog.Err(err).Msg("Rejected table")
				responseChan <- Result{Err: err}
				return
			}

			var stages []Stage
			if fields.Note != "" {
				stages = append(stages,
					NewCleaner(fields.Note),
					NewSegments(segmenter, fields.Note+"_clean", fields.Note),
				)
			}
			stages = append(stages, NewEncoder(examVocabulary, organVocabulary, contrastMap, fields))

			chain(request.Table, stages...)

			for _, field := range addedFields(fields) {
				request.Table.AddField(field)
			}

			summary := buildSummary(request.Table, request.Tid, fields, examVocabulary, organVocabulary, started)
			pplnLog.Info().
				Int("rows", summary.Rows).
				Int64("duration_ms", summary.DurationMs).
				Msg("Finished referral pipeline")
			responseChan <- Result{Table: request.Table, Summary: summary}
		}()

		return responseChan
	}, nil
}

// Vocabularies compiles the exam and organ vocabularies a pipeline with the
// given params encodes with. Callers reporting on stored flags use it to turn
// bit positions back into category names.
func Vocabularies(params ReferralParams) (exam, organs *taxonomy.Vocabulary, err error) {
	var cfg types.Configuration
	if params.ConfigPath != "" {
		cfg, err = types.LoadConfiguration(params.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
	}

	exam, err = newVocabulary(taxonomy.ExamVocabularyName, cfg.ExamCategories, taxonomy.DefaultExamCategories)
	if err != nil {
		return nil, nil, err
	}
	organs, err = newVocabulary(taxonomy.OrganVocabularyName, cfg.OrganClusters, taxonomy.DefaultOrganClusters)
	if err != nil {
		return nil, nil, err
	}
	return exam, organs, nil
}

// addedFields lists the fields a run appends to the schema, in column order.
func addedFields(fields FieldMap) []string {
	var added []string
	if fields.Note != "" {
		added = append(added,
			fields.Note+"_clean",
			fields.Exam,
			fields.Organ,
			fields.Contrast,
		)
	}
	return append(added,
		fields.Exam+"_flags",
		fields.Organ+"_flags",
		fields.Contrast+"_flags",
	)
}

func newSegmenter(cfg types.SegmenterConfig) *referral.Segmenter {
	ctTypes := cfg.CTTypes
	if len(ctTypes) == 0 {
		ctTypes = referral.DefaultCTTypes()
	}
	keywords := cfg.ContrastKeywords
	if len(keywords) == 0 {
		keywords = referral.DefaultContrastKeywords()
	}
	return referral.NewSegmenter(ctTypes, keywords)
}

func newVocabulary(name string, configured []types.CategoryConfig, defaults func() []taxonomy.Category) (*taxonomy.Vocabulary, error) {
	if len(configured) > 0 {
		return taxonomy.FromConfig(name, configured)
	}
	return taxonomy.NewVocabulary(name, defaults())
}

func newContrastMap(cfg types.ContrastConfig) *taxonomy.ContrastMap {
	variants := cfg.Variants
	if len(variants) == 0 {
		variants = taxonomy.DefaultContrastVariants()
	}
	return taxonomy.NewContrastMap(variants)
}
