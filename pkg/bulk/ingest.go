package bulk

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/lastmilefood/rescuesync/internal/transport"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// Ingest submits data as a CSV ingest job on object and waits for it to
// finish. Rows rejected by the CRM do not fail the call; they are returned
// in JobResult.FailedRecords. A job that ends Failed or Aborted returns a
// JobFailedError carrying the remote error message.
func (c *Client) Ingest(ctx context.Context, op Operation, data *table.Table, object string) (*JobResult, error) {
	if !op.Valid() {
		return nil, &errors.ValidationError{Field: "operation", Value: op, Message: "not an ingest operation"}
	}
	if data.Len() == 0 {
		return nil, &errors.ValidationError{Field: "data", Message: fmt.Sprintf("no rows to %s on %s", op, object)}
	}
	payload, err := data.CSV()
	if err != nil {
		return nil, err
	}

	body, err := transport.JSON(createIngestRequest{Operation: op, Object: object, ContentType: "CSV", LineEnding: "LF"})
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Send(ctx, http.MethodPost, c.base+"ingest/", contentJSON, body)
	if err != nil {
		return nil, err
	}
	var job JobInfo
	if err := transport.DecodeResponse(resp, fmt.Sprintf("create %s job", op), &job, http.StatusOK); err != nil {
		return nil, err
	}

	log := c.logger.With().Str("job_id", job.ID).Str("operation", string(op)).Str("object", object).Logger()
	log.Info().Int("rows", data.Len()).Msg("Ingest job created")

	jobURL := c.base + "ingest/" + job.ID

	resp, err = c.http.Send(ctx, http.MethodPut, jobURL+"/batches", contentCSV, payload)
	if err != nil {
		return nil, err
	}
	if _, err := transport.Expect(resp, "upload batch", http.StatusCreated); err != nil {
		return nil, err
	}

	body, err = transport.JSON(stateRequest{State: StateUploadComplete})
	if err != nil {
		return nil, err
	}
	resp, err = c.http.Send(ctx, http.MethodPatch, jobURL, contentJSON, body)
	if err != nil {
		return nil, err
	}
	if _, err := transport.Expect(resp, "close job"); err != nil {
		return nil, err
	}
	log.Debug().Msg("Waiting for ingest job to complete")

	info, err := c.poll(ctx, fmt.Sprintf("%s job on %s", op, object), c.ingestPoll, func() (*JobInfo, error) {
		return c.getJob(ctx, jobURL, "poll ingest job")
	})
	if err != nil {
		return nil, err
	}
	if info.State != StateJobComplete {
		return nil, &errors.JobFailedError{JobID: job.ID, Object: object, State: string(info.State), Message: info.ErrorMessage}
	}

	result := &JobResult{
		ID:        job.ID,
		Object:    object,
		Operation: op,
		Processed: info.NumberRecordsProcessed,
		Failed:    info.NumberRecordsFailed,
	}

	if result.Failed > 0 {
		failed, err := c.failedResults(ctx, jobURL)
		if err != nil {
			return nil, err
		}
		result.FailedRecords = failed
		log.Warn().
			Int("processed", result.Processed).
			Int("failed", result.Failed).
			Msg("Ingest job completed with rejected rows")
		return result, nil
	}

	log.Info().Int("processed", result.Processed).Msg("Ingest job complete")
	return result, nil
}

func (c *Client) failedResults(ctx context.Context, jobURL string) (*table.Table, error) {
	resp, err := c.http.Get(ctx, jobURL+"/failedResults", "get failed results")
	if err != nil {
		return nil, err
	}
	body, err := transport.Expect(resp, "get failed results")
	if err != nil {
		return nil, err
	}
	return table.ReadCSV(bytes.NewReader(body))
}
