package evse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
)

const (
	parametersURI = "/getParameters"
	setCurrentURI = "/setCurrent"

	acceptHeader    = "Accept"
	jsonContentType = "application/json"
)

// Settings supplies the charger base URL and request timeout, both are consulted on every call.
type Settings interface {
	GetBaseURL() string
	// GetHTTPTimeout returns the timeout of a single request, zero disables it.
	GetHTTPTimeout() time.Duration
}

// Client represents EVSE-WiFi HTTP API client.
type Client interface {
	// Parameters fetches a single telemetry snapshot of the charger.
	Parameters() (*Parameters, error)
	// SetParameter sets a single charger parameter and verifies that the charger echoed the requested value.
	SetParameter(parameter, value string) error
	// Ping checks if the charger is reachable.
	Ping() error
}

type httpClient struct {
	httpClient *http.Client
	settings   Settings
}

// NewHTTPClient returns a new instance of EVSE-WiFi Client.
func NewHTTPClient(http *http.Client, settings Settings) Client {
	return &httpClient{
		httpClient: http,
		settings:   settings,
	}
}

func (c *httpClient) Parameters() (*Parameters, error) {
	u := c.buildURL(parametersURI)

	req, err := newRequestBuilder(http.MethodGet, u).
		addHeader(acceptHeader, jsonContentType).
		build()
	if err != nil {
		return nil, TransportError{Err: errors.Wrap(err, "failed to create parameters request"), URL: u}
	}

	body := &parametersResponse{}

	if err := c.do(req, body); err != nil {
		return nil, err
	}

	params, err := body.parameters()
	if err != nil {
		return nil, FormatError{Err: err}
	}

	return params, nil
}

func (c *httpClient) SetParameter(parameter, value string) error {
	u := c.buildURL(setCurrentURI)

	req, err := newRequestBuilder(http.MethodGet, u).
		addQuery(parameter, value).
		addHeader(acceptHeader, jsonContentType).
		build()
	if err != nil {
		return TransportError{Err: errors.Wrap(err, "failed to create set parameter request"), URL: u}
	}

	echo := make(map[string]interface{})

	if err := c.do(req, &echo); err != nil {
		return err
	}

	raw, ok := echo[parameter]
	if !ok {
		return FormatError{Err: errors.Errorf("response does not echo parameter %s", parameter)}
	}

	got := normalize(raw)
	if got != normalize(value) {
		return errors.Wrapf(ErrCommandMismatch, "parameter %s requested %s, got %s", parameter, value, got)
	}

	return nil
}

func (c *httpClient) Ping() error {
	u := c.buildURL(parametersURI)

	req, err := newRequestBuilder(http.MethodGet, u).build()
	if err != nil {
		return TransportError{Err: errors.Wrap(err, "failed to create ping request"), URL: u}
	}

	return c.do(req, nil)
}

func (c *httpClient) buildURL(path string) string {
	return c.settings.GetBaseURL() + path
}

// do performs the request within the configured timeout and decodes the response into body, if given.
func (c *httpClient) do(req *http.Request, body interface{}) error {
	if timeout := c.settings.GetHTTPTimeout(); timeout > 0 {
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()

		req = req.WithContext(ctx)
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if body == nil {
		return nil
	}

	return c.readResponseBody(resp, body)
}

func (c *httpClient) performRequest(req *http.Request, wantResponseCode int) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, TransportError{Err: errors.Wrap(err, "could not perform http call"), URL: req.URL.String()}
	}

	if resp.StatusCode != wantResponseCode {
		resp.Body.Close()

		return nil, TransportError{
			Err:    errors.Errorf("expected response code to be %d, but got %d instead", wantResponseCode, resp.StatusCode),
			URL:    req.URL.String(),
			Status: resp.StatusCode,
		}
	}

	return resp, nil
}

func (c *httpClient) readResponseBody(r *http.Response, body interface{}) error {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return TransportError{Err: errors.Wrap(err, "could not read response body"), URL: r.Request.URL.String()}
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return TransportError{Err: errors.New("empty response body"), URL: r.Request.URL.String(), Status: r.StatusCode}
	}

	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.UseNumber()

	if err := decoder.Decode(body); err != nil {
		return FormatError{Err: errors.Wrap(err, "could not decode response body")}
	}

	if funk.IsEmpty(body) {
		return FormatError{Err: errors.New("response body does not contain expected data")}
	}

	return nil
}

// normalize converts an echoed or requested value into its canonical string form.
func normalize(v interface{}) string {
	var s string

	switch value := v.(type) {
	case string:
		s = value
	case json.Number:
		s = value.String()
	case float64:
		s = strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(value)
	case nil:
		return ""
	default:
		s = fmt.Sprint(value)
	}

	s = strings.TrimSpace(s)

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return s
}
