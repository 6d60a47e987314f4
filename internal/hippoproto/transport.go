// Package hippoproto adapts the store to the host's resource-loading
// mechanism: an http.RoundTripper that serves opaque-scheme requests
// ("hippo:<id>") straight from the resolver. Registration happens via
// http.Transport.RegisterProtocol at the outermost wiring layer, which
// is the single process-wide slot for the active resolver.
package hippoproto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hippostore/hippo/internal/common"
)

// Resolver is the slice of the store the interceptor needs.
type Resolver interface {
	ResolveContent(ctx context.Context, reference string) (data []byte, contentType string, err error)
}

// Transport serves requests for the registered opaque scheme. Requests
// for any other scheme never reach it: http.Transport dispatches by
// scheme.
type Transport struct {
	resolver Resolver
}

func NewTransport(r Resolver) *Transport {
	return &Transport{resolver: r}
}

// Register binds a resolver for scheme on t. Call once at startup.
func Register(t *http.Transport, scheme string, r Resolver) {
	t.RegisterProtocol(scheme, NewTransport(r))
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	data, contentType, err := t.resolver.ResolveContent(req.Context(), req.URL.String())
	if err != nil {
		return errorResponse(req, err), nil
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(http.Header)
	header.Set("Content-Type", contentType)

	return &http.Response{
		Status:        http.StatusText(http.StatusOK),
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.0",
		ProtoMajor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		Request:       req,
	}, nil
}

// errorResponse maps resolution failures onto HTTP statuses so callers
// built around http.Client semantics see a response, not a transport
// error.
func errorResponse(req *http.Request, err error) *http.Response {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrMalformedReference):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNoSuchObject):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrRemoteRetrieval):
		status = http.StatusBadGateway
	}

	body := []byte(fmt.Sprintf("%v\n", err))
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")

	return &http.Response{
		Status:        http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.0",
		ProtoMajor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
