// Package api implements the client half of the credential-exchange
// protocol: request upload credentials for an object, write the
// ciphertext to the granted location, and read objects back from the
// server or from their durable remote location.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hippostore/hippo/internal/common"
)

// Doer executes HTTP requests; *http.Client satisfies it. Implementations
// must be safe for concurrent use, since multiple upload workers share
// one client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	ownerID string
	http    Doer
}

// NewClient returns a credential-exchange client for the service at
// baseURL, acting as ownerID. If doer is nil a default http.Client with
// a 30s timeout is used.
func NewClient(baseURL, ownerID string, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, ownerID: ownerID, http: doer}
}

// RequestUploadCredentials performs step one of the upload handoff:
// POST {base}/object with the owner/reference pair. A 404 means the
// pair is unknown to the server (common.ErrNoSuchObject, permanent);
// 5xx and transport failures are transient.
func (c *Client) RequestUploadCredentials(ctx context.Context, id string) (*UploadCredentials, error) {
	body, err := json.Marshal(CredentialsRequest{
		ClientReferenceOwner: c.ownerID,
		ClientReferenceID:    id,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", common.ErrCredentialExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/object", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCredentialExchange, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transient(fmt.Errorf("%w: %v", common.ErrCredentialExchange, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNoSuchObject
	case resp.StatusCode >= 500:
		return nil, transient(fmt.Errorf("%w: server status %s", common.ErrCredentialExchange, resp.Status))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: unexpected status %s", common.ErrCredentialExchange, resp.Status)
	}

	var creds UploadCredentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", common.ErrCredentialExchange, err)
	}
	return &creds, nil
}

// PutObject performs step two: write the ciphertext to the granted
// single-use endpoint. The bytes are sent exactly as stored on disk;
// no re-encryption happens here.
func (c *Client) PutObject(ctx context.Context, putURL string, ciphertext io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, putURL, ciphertext)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUploadWrite, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return transient(fmt.Errorf("%w: %v", common.ErrUploadWrite, err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 500:
		return transient(fmt.Errorf("%w: server status %s", common.ErrUploadWrite, resp.Status))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: unexpected status %s", common.ErrUploadWrite, resp.Status)
	}
	return nil
}

// GetObject fetches ciphertext bytes from a durable remote location.
func (c *Client) GetObject(ctx context.Context, uri string) ([]byte, error) {
	return c.get(ctx, uri)
}

// GetObjectByReference fetches an object's ciphertext from the service
// by its owner/reference pair.
func (c *Client) GetObjectByReference(ctx context.Context, id string) ([]byte, error) {
	q := url.Values{}
	q.Set("client_reference_owner", c.ownerID)
	q.Set("client_reference_id", id)
	return c.get(ctx, c.baseURL+"/object?"+q.Encode())
}

// GetObjectByPath fetches an object's ciphertext from the service by
// its server-side path identifier.
func (c *Client) GetObjectByPath(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, c.baseURL+"/object/"+url.PathEscape(path))
}

func (c *Client) get(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteRetrieval, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteRetrieval, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNoSuchObject
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %s", common.ErrRemoteRetrieval, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", common.ErrRemoteRetrieval, err)
	}
	return body, nil
}
