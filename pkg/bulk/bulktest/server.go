// Package bulktest provides an in-memory Bulk API 2.0 server for tests.
//
// The server keeps one record list per object. Query jobs select named
// fields from an object with an optional single equality filter; ingest jobs
// insert, update or delete records by Id. Failure injection hooks let tests
// exercise failed jobs and rejected rows.
package bulktest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/lastmilefood/rescuesync/pkg/table"
)

// BasePath is the jobs path served, matching API version v58.0.
const BasePath = "/services/data/v58.0/jobs/"

// Record is one stored row, field name to text value.
type Record map[string]string

// IngestJob is an ingest job as the server saw it.
type IngestJob struct {
	ID        string
	Operation string
	Object    string
	Rows      *table.Table
	State     string
	Failed    *table.Table
}

// Server is a fake Bulk API.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	objects   map[string][]Record
	ids       map[string]int
	jobSeq    int
	queries   map[string]*queryJob
	ingests   map[string]*IngestJob
	order     []string
	queryLog  []string
	failJobs  map[string]string
	reject    func(object string, rec Record) string
	pageSize  int
	pollsLeft map[string]int

	// PollsUntilComplete is how many status polls report InProgress before
	// a job completes.
	PollsUntilComplete int
}

type queryJob struct {
	soql   string
	result *table.Table
}

// NewServer starts a fake Bulk API. Close it when done.
func NewServer() *Server {
	s := &Server{
		objects:   make(map[string][]Record),
		ids:       make(map[string]int),
		queries:   make(map[string]*queryJob),
		ingests:   make(map[string]*IngestJob),
		failJobs:  make(map[string]string),
		pollsLeft: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URI returns the jobs base URI to configure a client with.
func (s *Server) URI() string { return s.URL + BasePath }

// Seed appends records to object, assigning an Id to records without one.
func (s *Server) Seed(object string, recs ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		cp := Record{}
		for k, v := range r {
			cp[k] = v
		}
		if cp["Id"] == "" {
			cp["Id"] = s.nextID(object)
		}
		s.objects[object] = append(s.objects[object], cp)
	}
}

// Records returns a copy of the records stored for object.
func (s *Server) Records(object string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.objects[object]))
	for i, r := range s.objects[object] {
		cp := Record{}
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// IngestJobs returns the ingest jobs in submission order.
func (s *Server) IngestJobs() []*IngestJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*IngestJob, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.ingests[id])
	}
	return out
}

// Queries returns the SOQL of every query job received.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queryLog...)
}

// FailJobs makes every ingest job on object end Failed with message.
func (s *Server) FailJobs(object, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failJobs[object] = message
}

// RejectRows installs a per-row hook; a non-empty return rejects the row
// with that error text.
func (s *Server) RejectRows(fn func(object string, rec Record) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = fn
}

// PageSize splits query results into pages of n rows linked by
// Sforce-Locator. Zero returns a single page.
func (s *Server) PageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

var idPrefixes = map[string]string{
	"Account":        "001",
	"Contact":        "003",
	"Food_Rescue__c": "a0B",
}

func (s *Server) nextID(object string) string {
	s.ids[object]++
	prefix, ok := idPrefixes[object]
	if !ok {
		prefix = "a0Z"
	}
	return fmt.Sprintf("%s%015d", prefix, s.ids[object])
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, BasePath) {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, BasePath), "/"), "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case parts[0] == "query" && len(parts) == 1 && r.Method == http.MethodPost:
		s.createQuery(w, r)
	case parts[0] == "query" && len(parts) == 2 && r.Method == http.MethodGet:
		s.queryStatus(w, parts[1])
	case parts[0] == "query" && len(parts) == 3 && parts[2] == "results":
		s.queryResults(w, r, parts[1])
	case parts[0] == "ingest" && (len(parts) == 1 || parts[1] == "") && r.Method == http.MethodPost:
		s.createIngest(w, r)
	case parts[0] == "ingest" && len(parts) == 3 && parts[2] == "batches" && r.Method == http.MethodPut:
		s.uploadBatch(w, r, parts[1])
	case parts[0] == "ingest" && len(parts) == 2 && r.Method == http.MethodPatch:
		s.closeIngest(w, r, parts[1])
	case parts[0] == "ingest" && len(parts) == 2 && r.Method == http.MethodGet:
		s.ingestStatus(w, parts[1])
	case parts[0] == "ingest" && len(parts) == 3 && parts[2] == "failedResults":
		s.failedResults(w, parts[1])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown endpoint "+r.Method+" "+r.URL.Path)
	}
}

var soqlPattern = regexp.MustCompile(`(?is)^\s*select\s+(.+?)\s+from\s+([A-Za-z0-9_]+)(?:\s+where\s+([A-Za-z0-9_]+)\s*=\s*(null|'[^']*'))?\s*$`)

func (s *Server) createQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Operation string `json:"operation"`
		Query     string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON_PARSER_ERROR", err.Error())
		return
	}
	m := soqlPattern.FindStringSubmatch(req.Query)
	if m == nil {
		writeError(w, http.StatusBadRequest, "MALFORMED_QUERY", "unsupported query: "+req.Query)
		return
	}
	s.queryLog = append(s.queryLog, req.Query)

	var cols []string
	for _, f := range strings.Split(m[1], ",") {
		cols = append(cols, strings.TrimSpace(f))
	}
	result := table.New(cols...)
	for _, rec := range s.objects[m[2]] {
		if m[3] != "" && !matches(s.field(rec, m[3]), m[4]) {
			continue
		}
		vals := make([]table.Value, len(cols))
		for i, c := range cols {
			vals[i] = table.Parse(s.field(rec, c))
		}
		_ = result.AppendRow(vals...)
	}

	id := s.newJobID()
	s.queries[id] = &queryJob{soql: req.Query, result: result}
	s.pollsLeft[id] = s.PollsUntilComplete
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "operation": "query", "state": "UploadComplete"})
}

// field reads a stored field. Contact Name is compound and derived from
// FirstName and LastName when not stored directly. A relationship path such
// as Agency_Name__r.Name follows the Agency_Name__c id to the referenced
// record in any object.
func (s *Server) field(rec Record, name string) string {
	if rel, sub, ok := strings.Cut(name, "__r."); ok {
		id := rec[rel+"__c"]
		if id == "" {
			return ""
		}
		for _, recs := range s.objects {
			for _, other := range recs {
				if other["Id"] == id {
					return s.field(other, sub)
				}
			}
		}
		return ""
	}
	if v, ok := rec[name]; ok || name != "Name" {
		return v
	}
	return strings.TrimSpace(rec["FirstName"] + " " + rec["LastName"])
}

func matches(have, literal string) bool {
	if strings.EqualFold(literal, "null") {
		return have == ""
	}
	return have == strings.Trim(literal, "'")
}

func (s *Server) queryStatus(w http.ResponseWriter, id string) {
	if _, ok := s.queries[id]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no query job "+id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "operation": "query", "state": s.advance(id)})
}

func (s *Server) queryResults(w http.ResponseWriter, r *http.Request, id string) {
	job, ok := s.queries[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no query job "+id)
		return
	}
	rows := job.result
	offset, _ := strconv.Atoi(r.URL.Query().Get("locator"))
	end := rows.Len()
	if s.pageSize > 0 && offset+s.pageSize < end {
		end = offset + s.pageSize
	}

	page := rows.Filter(func(row table.Row) bool { return row.Index() >= offset && row.Index() < end })
	locator := "null"
	if end < rows.Len() {
		locator = strconv.Itoa(end)
	}

	var buf bytes.Buffer
	_ = table.WriteCSV(&buf, page)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Sforce-Locator", locator)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) createIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Operation   string `json:"operation"`
		Object      string `json:"object"`
		ContentType string `json:"contentType"`
		LineEnding  string `json:"lineEnding"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON_PARSER_ERROR", err.Error())
		return
	}
	if req.ContentType != "CSV" || req.LineEnding != "LF" {
		writeError(w, http.StatusBadRequest, "INVALIDJOB", "expected CSV with LF line endings")
		return
	}
	id := s.newJobID()
	s.ingests[id] = &IngestJob{ID: id, Operation: req.Operation, Object: req.Object, State: "Open"}
	s.order = append(s.order, id)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "operation": req.Operation, "object": req.Object, "state": "Open"})
}

func (s *Server) uploadBatch(w http.ResponseWriter, r *http.Request, id string) {
	job, ok := s.ingests[id]
	if !ok || job.State != "Open" {
		writeError(w, http.StatusBadRequest, "INVALIDJOBSTATE", "job "+id+" is not open")
		return
	}
	rows, err := table.ReadCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CSV", err.Error())
		return
	}
	job.Rows = rows
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) closeIngest(w http.ResponseWriter, r *http.Request, id string) {
	job, ok := s.ingests[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no ingest job "+id)
		return
	}
	var req struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.State != "UploadComplete" {
		writeError(w, http.StatusBadRequest, "INVALIDJOBSTATE", "expected UploadComplete")
		return
	}
	job.State = "UploadComplete"
	s.pollsLeft[id] = s.PollsUntilComplete
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "state": job.State})
}

func (s *Server) ingestStatus(w http.ResponseWriter, id string) {
	job, ok := s.ingests[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no ingest job "+id)
		return
	}
	body := map[string]any{"id": id, "operation": job.Operation, "object": job.Object}

	if job.State == "UploadComplete" || job.State == "InProgress" {
		if s.advance(id) == "JobComplete" {
			s.process(job)
		} else {
			job.State = "InProgress"
		}
	}

	body["state"] = job.State
	if job.State == "Failed" {
		body["errorMessage"] = s.failJobs[job.Object]
	}
	if job.State == "JobComplete" {
		failed := 0
		if job.Failed != nil {
			failed = job.Failed.Len()
		}
		body["numberRecordsProcessed"] = job.Rows.Len()
		body["numberRecordsFailed"] = failed
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) failedResults(w http.ResponseWriter, id string) {
	job, ok := s.ingests[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no ingest job "+id)
		return
	}
	out := job.Failed
	if out == nil {
		out = table.New("sf__Id", "sf__Error")
	}
	var buf bytes.Buffer
	_ = table.WriteCSV(&buf, out)
	w.Header().Set("Content-Type", "text/csv")
	_, _ = w.Write(buf.Bytes())
}

// process applies a closed ingest job to the stored records.
func (s *Server) process(job *IngestJob) {
	if _, ok := s.failJobs[job.Object]; ok {
		job.State = "Failed"
		return
	}
	job.State = "JobComplete"

	failed := table.New(append([]string{"sf__Id", "sf__Error"}, job.Rows.Columns()...)...)
	for i := 0; i < job.Rows.Len(); i++ {
		rec := Record{}
		for _, c := range job.Rows.Columns() {
			rec[c] = job.Rows.Get(i, c).String()
		}
		if s.reject != nil {
			if msg := s.reject(job.Object, rec); msg != "" {
				_ = failed.AppendRow(append([]table.Value{table.Null(), table.Text(msg)}, job.Rows.Values(i)...)...)
				continue
			}
		}
		switch job.Operation {
		case "insert":
			rec["Id"] = s.nextID(job.Object)
			s.objects[job.Object] = append(s.objects[job.Object], rec)
		case "update":
			if !s.update(job.Object, rec) {
				_ = failed.AppendRow(append([]table.Value{table.Text(rec["Id"]), table.Text("ENTITY_IS_DELETED:entity is deleted")}, job.Rows.Values(i)...)...)
			}
		case "delete":
			s.remove(job.Object, rec["Id"])
		}
	}
	if failed.Len() > 0 {
		job.Failed = failed
	}
}

func (s *Server) update(object string, rec Record) bool {
	for _, have := range s.objects[object] {
		if have["Id"] == rec["Id"] {
			for k, v := range rec {
				have[k] = v
			}
			return true
		}
	}
	return false
}

func (s *Server) remove(object, id string) {
	recs := s.objects[object]
	for i, have := range recs {
		if have["Id"] == id {
			s.objects[object] = append(recs[:i], recs[i+1:]...)
			return
		}
	}
}

// advance consumes one poll and returns the state to report.
func (s *Server) advance(id string) string {
	if s.pollsLeft[id] > 0 {
		s.pollsLeft[id]--
		return "InProgress"
	}
	return "JobComplete"
}

func (s *Server) newJobID() string {
	s.jobSeq++
	return fmt.Sprintf("750%015d", s.jobSeq)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, []map[string]string{{"errorCode": code, "message": msg}})
}
