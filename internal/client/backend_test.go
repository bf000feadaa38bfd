package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testWindow() model.TimeWindow {
	return model.TimeWindow{
		From: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC),
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*BackendClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewBackendClient(server.URL, "secret-token", 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	return client, server
}

func TestFetchIntakeRecords_BareArray(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/profiles/p1/intake-records", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2025-05-01T00:00:00Z", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-05-31T23:59:59Z", r.URL.Query().Get("to"))

		w.Write([]byte(`[{"id":"r1","profile_id":"p1","status":"taken"}]`))
	}))

	records, err := client.FetchIntakeRecords(context.Background(), "p1", testWindow())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "taken", records[0].RawStatus)
}

func TestFetchIntakeRecords_DataEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"r1","status":"missed","drug_name":"Panadol"}]}`))
	}))

	records, err := client.FetchIntakeRecords(context.Background(), "p1", testWindow())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].DrugName)
	assert.Equal(t, "Panadol", *records[0].DrugName)
}

func TestFetchIntakeRecords_NestedDataEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"data":[{"id":"r1","status":"pending"},{"id":"r2","status":"skipped"}]}}`))
	}))

	records, err := client.FetchIntakeRecords(context.Background(), "p1", testWindow())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFetchIntakeRecords_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))

	records, err := client.FetchIntakeRecords(context.Background(), "p1", testWindow())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 3, attempts)
}

func TestFetchIntakeRecords_GivesUpAfterMaxRetries(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchIntakeRecords(context.Background(), "p1", testWindow())
	assert.Error(t, err)
}

func TestRegisterDevice(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/push-devices", r.URL.Path)
		w.Write([]byte(`{"id":"dev-42"}`))
	}))

	id, err := client.RegisterDevice(context.Background(), model.PlatformAndroid, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "dev-42", id)
}

func TestRegisterDevice_EnvelopedResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"dev-42"}}`))
	}))

	id, err := client.RegisterDevice(context.Background(), model.PlatformIOS, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "dev-42", id)
}

func TestRegisterDevice_MissingID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := client.RegisterDevice(context.Background(), model.PlatformIOS, "tok-1")
	assert.Error(t, err)
}

func TestListDevices(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"data":[{"id":"dev-1","token":"a","platform":"ios"},{"id":"dev-2","token":"b","platform":"android"}]}`))
	}))

	devices, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "dev-2", devices[1].ID)
	assert.Equal(t, model.PlatformAndroid, devices[1].Platform)
}

func TestDeleteDevice(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/push-devices/dev-42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.DeleteDevice(context.Background(), "dev-42")
	assert.NoError(t, err)
}

func TestDeleteDevice_ServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := client.DeleteDevice(context.Background(), "dev-42")
	assert.Error(t, err)
}
