package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippostore/hippo/internal/common"
)

func TestRequestUploadCredentials_Success(t *testing.T) {
	var gotBody CredentialsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/object", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(UploadCredentials{
			FutureURL:    "https://x/obj/ID",
			FuturePath:   "users/2024/ID",
			PutURL:       "https://x/put",
			ObjectSecret: "s3cret",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "owner-1", srv.Client())
	creds, err := c.RequestUploadCredentials(context.Background(), "ID")
	require.NoError(t, err)

	assert.Equal(t, "owner-1", gotBody.ClientReferenceOwner)
	assert.Equal(t, "ID", gotBody.ClientReferenceID)
	assert.Equal(t, "https://x/obj/ID", creds.FutureURL)
	assert.Equal(t, "https://x/put", creds.PutURL)
	assert.Equal(t, "s3cret", creds.ObjectSecret)
}

func TestRequestUploadCredentials_NotFound_IsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "owner-1", srv.Client())
	_, err := c.RequestUploadCredentials(context.Background(), "ID")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoSuchObject))
	assert.False(t, IsTransient(err))
}

func TestRequestUploadCredentials_ServerError_IsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "owner-1", srv.Client())
	_, err := c.RequestUploadCredentials(context.Background(), "ID")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrCredentialExchange))
	assert.True(t, IsTransient(err))
}

func TestRequestUploadCredentials_TransportError_IsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, "owner-1", nil)
	_, err := c.RequestUploadCredentials(context.Background(), "ID")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrCredentialExchange))
	assert.True(t, IsTransient(err))
}

func TestPutObject_Success(t *testing.T) {
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "owner-1", srv.Client())
	err := c.PutObject(context.Background(), srv.URL+"/put", bytes.NewReader([]byte("ciphertext")))
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), gotBody)
}

func TestPutObject_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"server error retryable", http.StatusBadGateway, true},
		{"client error permanent", http.StatusForbidden, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "owner-1", srv.Client())
			err := c.PutObject(context.Background(), srv.URL+"/put", bytes.NewReader([]byte("x")))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrUploadWrite))
			assert.Equal(t, tc.transient, IsTransient(err))
		})
	}
}

func TestGetObject_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "owner-1", srv.Client())
	body, err := c.GetObject(context.Background(), srv.URL+"/obj/ID")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote bytes"), body)
}

func TestGetObject_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "owner-1", srv.Client())
	_, err := c.GetObject(context.Background(), srv.URL+"/obj/ID")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteRetrieval))
}

func TestGetObjectByReference_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/object", r.URL.Path)
		require.Equal(t, "owner-1", r.URL.Query().Get("client_reference_owner"))
		require.Equal(t, "ID", r.URL.Query().Get("client_reference_id"))
		_, _ = w.Write([]byte("by-reference bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "owner-1", srv.Client())
	body, err := c.GetObjectByReference(context.Background(), "ID")
	require.NoError(t, err)
	assert.Equal(t, []byte("by-reference bytes"), body)
}

func TestGetObjectByPath_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/object/users%2F2024%2FID", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "owner-1", srv.Client())
	_, err := c.GetObjectByPath(context.Background(), "users/2024/ID")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoSuchObject))
}
