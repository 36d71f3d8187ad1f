package bulk

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/lastmilefood/rescuesync/internal/transport"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// locatorHeader carries the cursor for the next result page. The literal
// "null" marks the last page.
const locatorHeader = "Sforce-Locator"

// Query runs a SOQL query job and returns its result set. Result pages are
// followed until the locator is exhausted.
func (c *Client) Query(ctx context.Context, soql string) (*table.Table, error) {
	body, err := transport.JSON(createQueryRequest{Operation: OpQuery, Query: soql})
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Send(ctx, http.MethodPost, c.base+"query", contentJSON, body)
	if err != nil {
		return nil, err
	}
	var job JobInfo
	if err := transport.DecodeResponse(resp, "create query job", &job, http.StatusOK); err != nil {
		return nil, err
	}

	log := c.logger.With().Str("job_id", job.ID).Str("operation", string(OpQuery)).Logger()
	log.Debug().Str("query", soql).Msg("Query job created")

	info, err := c.poll(ctx, "query job", c.queryPoll, func() (*JobInfo, error) {
		return c.getJob(ctx, c.base+"query/"+job.ID, "poll query job")
	})
	if err != nil {
		return nil, err
	}
	if info.State != StateJobComplete {
		return nil, &errors.JobFailedError{JobID: job.ID, Object: queryObject(soql), State: string(info.State), Message: info.ErrorMessage}
	}

	result, err := c.results(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if len(result.Columns()) == 0 {
		result = table.New(queryColumns(soql)...)
	}

	log.Debug().Int("rows", result.Len()).Msg("Query job complete")
	return result.Named(queryObject(soql)), nil
}

func (c *Client) results(ctx context.Context, jobID string) (*table.Table, error) {
	var out *table.Table
	locator := ""
	for {
		endpoint := c.base + "query/" + jobID + "/results"
		if locator != "" {
			endpoint += "?locator=" + url.QueryEscape(locator)
		}
		resp, err := c.http.Get(ctx, endpoint, "get query results")
		if err != nil {
			return nil, err
		}
		next := resp.Header.Get(locatorHeader)
		body, err := transport.Expect(resp, "get query results")
		if err != nil {
			return nil, err
		}

		page, err := table.ReadCSV(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		switch {
		case out == nil:
			out = page
		case len(page.Columns()) > 0:
			if out, err = out.Concat(page); err != nil {
				return nil, err
			}
		}

		if next == "" || next == "null" {
			return out, nil
		}
		locator = next
	}
}

var selectPattern = regexp.MustCompile(`(?is)^\s*select\s+(.+?)\s+from\s+([A-Za-z0-9_]+)`)

// queryColumns extracts the selected field names so an empty result still
// has a header.
func queryColumns(soql string) []string {
	m := selectPattern.FindStringSubmatch(soql)
	if m == nil {
		return nil
	}
	var cols []string
	for _, f := range strings.Split(m[1], ",") {
		if f = strings.TrimSpace(f); f != "" {
			cols = append(cols, f)
		}
	}
	return cols
}

func queryObject(soql string) string {
	m := selectPattern.FindStringSubmatch(soql)
	if m == nil {
		return ""
	}
	return m[2]
}
