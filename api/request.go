package api

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"text2phenotype.com/refnorm/pipeline"
	"text2phenotype.com/refnorm/store"
	"text2phenotype.com/refnorm/tabular"
	"text2phenotype.com/refnorm/types"
)

// Request serves the normalization endpoints. Store is optional; without it
// the run listing endpoints answer 503.
type Request struct {
	Pipeline pipeline.Pipeline
	Store    *store.Store
}

type processResponse struct {
	Tid     string           `json:"tid"`
	Summary pipeline.Summary `json:"summary"`
	Records []types.Record   `json:"records"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newTid() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// ProcessData normalizes the posted table. A JSON body is an array of
// records and answers enriched records plus the run summary; any other body
// is treated as CSV and answers enriched CSV.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	reqLogger := makeRequestLogger(r)

	if r.Method != http.MethodPost {
		reqLogger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	asJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	var table *types.Table
	if asJSON {
		table, err = tabular.DecodeRecords(body)
	} else {
		table, err = tabular.Decode(bytes.NewReader(body), tabular.Options{})
	}
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not parse request body")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	request := pipeline.Request{
		Tid:    newTid(),
		Table:  table,
		Fields: fieldsFromQuery(r, table),
	}
	reqLogger.Info().Str("tid", request.Tid).Msg("Starting pipeline for request from API")
	result := <-req.Pipeline(request)
	if result.Err != nil {
		reqLogger.Err(result.Err).Int("status", http.StatusUnprocessableEntity).Msg("Pipeline rejected table")
		http.Error(w, result.Err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("X-Refnorm-Tid", request.Tid)
	if asJSON {
		w.Header().Set("Content-Type", "application/json")
		response := processResponse{
			Tid:     request.Tid,
			Summary: result.Summary,
			Records: result.Table.Rows,
		}
		if err = json.NewEncoder(w).Encode(response); err != nil {
			reqLogger.Err(err).Msg("Failed to write response")
			return
		}
	} else {
		w.Header().Set("Content-Type", "text/csv")
		if err = tabular.Encode(w, result.Table); err != nil {
			reqLogger.Err(err).Msg("Failed to write response")
			return
		}
	}
	reqLogger.Info().Int("status", http.StatusOK).Str("tid", request.Tid).Msg("Finished processing request")
}

// Health answers liveness probes.
func (req *Request) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Runs lists stored runs, newest first.
func (req *Request) Runs(w http.ResponseWriter, r *http.Request) {
	reqLogger := makeRequestLogger(r)
	if req.Store == nil {
		http.Error(w, "run store is not configured", http.StatusServiceUnavailable)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := req.Store.Runs(r.Context(), limit)
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusInternalServerError).Msg("Failed to list runs")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runs)
}

// RunSummary answers the stored summary for /runs/{tid}.
func (req *Request) RunSummary(w http.ResponseWriter, r *http.Request) {
	reqLogger := makeRequestLogger(r)
	if req.Store == nil {
		http.Error(w, "run store is not configured", http.StatusServiceUnavailable)
		return
	}
	tid := strings.TrimPrefix(r.URL.Path, "/runs/")
	summary, found, err := req.Store.LoadSummary(r.Context(), tid)
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusInternalServerError).Msg("Failed to load run summary")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func fieldsFromQuery(r *http.Request, table *types.Table) pipeline.FieldMap {
	query := r.URL.Query()
	fields := pipeline.FieldMap{
		Note:     query.Get("note"),
		Exam:     query.Get("exam"),
		Organ:    query.Get("organ"),
		Contrast: query.Get("contrast"),
	}
	if fields == (pipeline.FieldMap{}) {
		return tabular.DefaultFieldCandidates().DetectFields(table.Fields)
	}
	return fields
}
