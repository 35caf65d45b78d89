package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
	"github.com/DeBrosOfficial/ufwtail/pkg/filter"
	"github.com/DeBrosOfficial/ufwtail/pkg/hoststat"
	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
	"github.com/DeBrosOfficial/ufwtail/pkg/pipeline"
	"github.com/DeBrosOfficial/ufwtail/pkg/services"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

func entry(seq uint64, in, src string, dpt uint16) ufwlog.Entry {
	return ufwlog.Entry{
		Seq:         seq,
		Time:        time.Date(2024, time.January, 5, 10, 0, int(seq), 0, time.UTC),
		InInterface: in,
		Direction:   ufwlog.DirectionIn,
		Action:      "BLOCK",
		ActionKind:  ufwlog.ActionBlock,
		Protocol:    "TCP",
		ProtoKind:   ufwlog.ProtocolTCP,
		Source:      src,
		SourceAddr:  netip.MustParseAddr(src),
		SourcePort:  ufwlog.Port{Number: 40000, Valid: true},
		Dest:        "192.168.1.2",
		DestAddr:    netip.MustParseAddr("192.168.1.2"),
		DestPort:    ufwlog.Port{Number: dpt, Valid: true},
		Raw:         "raw line",
	}
}

type fixture struct {
	consumer *pipeline.Consumer
	queue    *pipeline.Queue
	server   *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := services.Load(strings.NewReader(
		"Service Name,Port Number,Transport Protocol,Description\nssh,22,tcp,The Secure Shell (SSH) Protocol\n"))
	require.NoError(t, err)

	q := pipeline.NewQueue(32)
	c := pipeline.NewConsumer(q, nil, pipeline.ConsumerOptions{Capacity: 32, Catalog: catalog})
	q.Push(entry(1, "eth0", "203.0.113.1", 22))
	q.Push(entry(2, "eth1", "198.51.100.4", 8443))
	c.Drain()

	srv := New(c, Options{SubscriberBuffer: 4})
	c.OnPublish(srv.Publish)
	return &fixture{consumer: c, queue: q, server: srv}
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestEntries(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/v1/entries")
	require.Equal(t, http.StatusOK, w.Code)
	var resp EntriesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, uint64(1), resp.Rows[0].Seq)
	require.NotNil(t, resp.Rows[0].Service)
	assert.Equal(t, "ssh", resp.Rows[0].Service.Name)
	require.NotNil(t, resp.Rows[0].DestPort)
	assert.Equal(t, uint16(22), *resp.Rows[0].DestPort)
	assert.Nil(t, resp.Rows[1].Service)
	assert.Equal(t, "BLOCK", resp.Rows[1].ActionKind)
	assert.Equal(t, "IN", resp.Rows[1].Direction)
}

func TestEntriesQuery(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		target   string
		wantSeqs []uint64
	}{
		{"limit keeps newest", "/v1/entries?limit=1", []uint64{2}},
		{"since", "/v1/entries?since=1", []uint64{2}},
		{"since past end", "/v1/entries?since=9", []uint64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.get(t, tt.target)
			require.Equal(t, http.StatusOK, w.Code)
			var resp EntriesResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			seqs := []uint64{}
			for _, r := range resp.Rows {
				seqs = append(seqs, r.Seq)
			}
			assert.Equal(t, tt.wantSeqs, seqs)
		})
	}
}

func TestEntriesRejectsBadQuery(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{"/v1/entries?limit=abc", "/v1/entries?limit=-1", "/v1/entries?since=x"} {
		w := f.get(t, target)
		require.Equal(t, http.StatusBadRequest, w.Code, target)
		var body struct {
			Error errors.HTTPError `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, errors.CodeValidation, body.Error.Code)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Stored)
	assert.Equal(t, 2, resp.Visible)
	assert.Equal(t, 32, resp.Capacity)
	assert.Equal(t, 0, resp.Subscribers)
	assert.False(t, resp.Paused)
}

func TestFilters(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.consumer.SetFilter(filter.SlotInterface, "eth0"))
	require.NoError(t, f.consumer.SetFilter(filter.SlotSource, "203.0.113.0/24"))

	w := f.get(t, "/v1/filters")
	require.Equal(t, http.StatusOK, w.Code)
	var resp FiltersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Slots, filter.NumSlots)
	assert.Equal(t, SlotValue{Slot: 1, Name: "interface", Value: "eth0"}, resp.Slots[0])
	assert.Equal(t, "203.0.113.0/24", resp.Slots[3].Value)
	assert.Empty(t, resp.Slots[5].Value)
	assert.Equal(t, "eth0", resp.Selected)
	assert.Equal(t, []string{"eth0", "eth1"}, resp.Interfaces)

	entries := f.get(t, "/v1/entries")
	var er EntriesResponse
	require.NoError(t, json.Unmarshal(entries.Body.Bytes(), &er))
	assert.Len(t, er.Rows, 1)
}

func TestReadOnly(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/filters", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStreamPushesNewRows(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello StreamMessage
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, MessageHello, hello.Type)
	assert.NotEmpty(t, hello.Subscriber)
	assert.Equal(t, uint64(2), hello.LastSeq)
	require.Equal(t, 1, f.server.Hub().Len())

	f.queue.Push(entry(3, "eth0", "203.0.113.7", 22))
	f.consumer.Drain()

	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageEntries, msg.Type)
	require.Len(t, msg.Rows, 1)
	assert.Equal(t, uint64(3), msg.Rows[0].Seq)
	assert.Equal(t, uint64(3), msg.LastSeq)
	require.NotNil(t, msg.Stats)
	assert.Equal(t, 3, msg.Stats.Stored)
}

func TestServeStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f.server.maxConns = 2

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

type fakeHost struct {
	snap hoststat.Snapshot
	ok   bool
}

func (f fakeHost) Last() (hoststat.Snapshot, bool) { return f.snap, f.ok }

func TestHostEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/v1/host")
	require.Equal(t, http.StatusNotFound, w.Code)

	snap := hoststat.Snapshot{CPUPercent: 12.5, MemoryTotal: 1000, MemoryUsed: 400, MemoryPercent: 40}
	srv := New(f.consumer, Options{Host: fakeHost{snap: snap, ok: true}})

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/host", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got hoststat.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 12.5, got.CPUPercent)
	assert.Equal(t, uint64(400), got.MemoryUsed)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	var stats StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.NotNil(t, stats.Host)
	assert.Equal(t, 40.0, stats.Host.MemoryPercent)
}

func TestHostEndpointBeforeFirstSample(t *testing.T) {
	f := newFixture(t)
	srv := New(f.consumer, Options{Host: fakeHost{}})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/host", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestErrorResponsesAreLogged(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	logger, err := logging.NewWriterLogger(&buf, logging.Options{Level: "debug", Format: "json"})
	require.NoError(t, err)

	serve := func(srv *Server, target string) int {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w.Code
	}

	disabled := New(f.consumer, Options{Logger: logger})
	require.Equal(t, http.StatusNotFound, serve(disabled, "/v1/host"))
	assert.Contains(t, buf.String(), "[API] resource unavailable")
	assert.Contains(t, buf.String(), `"code":"NOT_FOUND"`)
	assert.Contains(t, buf.String(), `"category":"CLIENT_ERROR"`)

	buf.Reset()
	require.Equal(t, http.StatusBadRequest, serve(disabled, "/v1/entries?limit=abc"))
	assert.Contains(t, buf.String(), "[API] request rejected")
	assert.Contains(t, buf.String(), `"code":"VALIDATION_ERROR"`)

	buf.Reset()
	waiting := New(f.consumer, Options{Host: fakeHost{}, Logger: logger})
	require.Equal(t, http.StatusInternalServerError, serve(waiting, "/v1/host"))
	assert.Contains(t, buf.String(), "[API] request failed")
	assert.Contains(t, buf.String(), `"code":"INTERNAL"`)
	assert.Contains(t, buf.String(), `"cause":"no snapshot published yet"`)
}
