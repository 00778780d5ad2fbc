package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchEvents_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "0xabc", r.URL.Query().Get("address"))
		assert.Equal(t, "167001", r.URL.Query().Get("chainID"))
		assert.Equal(t, "MessageSent", r.URL.Query().Get("event"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("size"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{"id": 1, "chainID": 167001, "amount": "5", "data": {"Message": {"GasLimit": 100}, "Raw": {"transactionHash": "0x01", "address": "0x02"}}}],
			"page": 1, "size": 20, "total": 41, "total_pages": 3, "first": false, "last": false, "max_page": 2
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/"}, nil, nil)
	chainID := uint64(167001)
	resp, err := client.FetchEvents(context.Background(), EventsParams{
		Address: "0xabc",
		ChainID: &chainID,
		Event:   EventMessageSent,
		Page:    1,
		Size:    20,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "0x01", resp.Items[0].Data.Raw.TransactionHash)
	assert.EqualValues(t, "100", resp.Items[0].Data.Message.GasLimit)
	assert.Equal(t, 41, resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.MaxPage)
}

func TestFetchEvents_OmitsChainIDWhenUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["chainID"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, nil, nil)
	resp, err := client.FetchEvents(context.Background(), EventsParams{Address: "0xabc", Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestFetchEvents_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid address"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, MaxRetries: 3, RetryBackoff: time.Millisecond}, nil, nil)
	_, err := client.FetchEvents(context.Background(), EventsParams{Address: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not fetch transactions from API")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "invalid address")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchEvents_ServerErrorRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"items": [], "page": 0, "size": 10}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, MaxRetries: 2, RetryBackoff: time.Millisecond}, nil, nil)
	resp, err := client.FetchEvents(context.Background(), EventsParams{Address: "0xabc", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Size)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetchEvents_MalformedBody(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, MaxRetries: 2, RetryBackoff: time.Millisecond}, nil, nil)
	_, err := client.FetchEvents(context.Background(), EventsParams{Address: "0xabc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDecode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchBlockInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blockInfo", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"chainID": 31336, "latestProcessedBlock": 100, "latestBlock": 120},
				{"chainID": 167001, "latestProcessedBlock": 55, "latestBlock": 55},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, nil, nil)
	infos, err := client.FetchBlockInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.EqualValues(t, 31336, infos[0].ChainID)
	assert.EqualValues(t, 100, infos[0].LatestProcessedBlock)
	assert.EqualValues(t, 120, infos[0].LatestBlock)
}

func TestFetchBlockInfo_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, nil, nil)
	_, err := client.FetchBlockInfo(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch block info")
}
