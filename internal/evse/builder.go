package evse

import (
	"net/http"
	"net/url"
)

type requestBuilder struct {
	method  string
	url     string
	query   url.Values
	headers map[string]string
}

func newRequestBuilder(method, url string) *requestBuilder {
	return &requestBuilder{
		method:  method,
		url:     url,
		query:   make(map[string][]string),
		headers: make(map[string]string),
	}
}

func (r *requestBuilder) addQuery(key, value string) *requestBuilder {
	r.query.Add(key, value)

	return r
}

func (r *requestBuilder) addHeader(key, value string) *requestBuilder {
	r.headers[key] = value

	return r
}

func (r *requestBuilder) build() (*http.Request, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, err
	}

	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequest(r.method, u.String(), nil) //nolint:noctx
	if err != nil {
		return nil, err
	}

	for key, value := range r.headers {
		req.Header.Add(key, value)
	}

	return req, nil
}
