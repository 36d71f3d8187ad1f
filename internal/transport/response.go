package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// ReadBody reads and closes a response body. Bodies of error responses are
// capped at MaxErrorBodyBytes.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()

	r := io.Reader(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		r = io.LimitReader(resp.Body, constants.MaxErrorBodyBytes)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "response body", err)
	}
	return body, nil
}

// Expect reads the body and returns an APIError labelled with stage unless
// the status is one of want. With no want, any 2xx is accepted.
func Expect(resp *http.Response, stage string, want ...int) ([]byte, error) {
	body, err := ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if !statusOK(resp.StatusCode, want) {
		apiErr := errors.NewAPIError(stage, resp.StatusCode, string(body))
		if resp.Request != nil {
			apiErr.Method = resp.Request.Method
			apiErr.Endpoint = resp.Request.URL.String()
		}
		return nil, apiErr
	}
	return body, nil
}

// DecodeResponse checks the status like Expect and decodes the JSON body into
// target.
func DecodeResponse(resp *http.Response, stage string, target any, want ...int) error {
	body, err := Expect(resp, stage, want...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", stage, err)
	}
	return nil
}

// JSON marshals v for a request body.
func JSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.WrapParse("json", "request", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func statusOK(status int, want []int) bool {
	if len(want) == 0 {
		return status >= 200 && status < 300
	}
	for _, w := range want {
		if status == w {
			return true
		}
	}
	return false
}
