package monitor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySinkLogAndUpdate(t *testing.T) {
	sink := NewMemorySink(10)

	id := sink.LogRequest(Record{
		Service:  "oracle",
		Endpoint: "/chat/completions",
		Purpose:  "date-verification",
		Date:     "2016-03-01",
	})
	require.NotEmpty(t, id)

	recent := sink.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, StatusPending, recent[0].Status)
	assert.Equal(t, "oracle", recent[0].Service)

	sink.UpdateRequest(id, Update{
		Status:       StatusSuccess,
		Duration:     120 * time.Millisecond,
		ResponseSize: 2048,
	})

	recent = sink.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, StatusSuccess, recent[0].Status)
	assert.Equal(t, 120*time.Millisecond, recent[0].Duration)
	assert.Equal(t, 2048, recent[0].ResponseSize)
}

func TestMemorySinkUnknownIDIgnored(t *testing.T) {
	sink := NewMemorySink(10)
	sink.LogRequest(Record{Service: "oracle"})

	// Must not panic or alter anything.
	sink.UpdateRequest("no-such-id", Update{Status: StatusError})
	assert.Equal(t, StatusPending, sink.Recent(1)[0].Status)
}

func TestMemorySinkBoundedHistory(t *testing.T) {
	sink := NewMemorySink(5)
	for i := 0; i < 8; i++ {
		sink.LogRequest(Record{Service: "oracle", Endpoint: fmt.Sprintf("/call-%d", i)})
	}

	recent := sink.Recent(0)
	require.Len(t, recent, 5)
	// Newest first.
	assert.Equal(t, "/call-7", recent[0].Endpoint)
	assert.Equal(t, "/call-3", recent[4].Endpoint)
}

func TestMemorySinkStats(t *testing.T) {
	sink := NewMemorySink(20)

	okID := sink.LogRequest(Record{Service: "oracle"})
	sink.UpdateRequest(okID, Update{Status: StatusSuccess})

	errID := sink.LogRequest(Record{Service: "oracle"})
	sink.UpdateRequest(errID, Update{Status: StatusError, Error: "boom"})

	sink.LogRequest(Record{Service: "resolver"})

	stats := sink.Stats()
	assert.Equal(t, 3, stats.TotalRequests)
	assert.Equal(t, 1, stats.ErrorCount)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 2, stats.ByService["oracle"])
	assert.Equal(t, 1, stats.ByService["resolver"])
	assert.InDelta(t, 1.0/3.0, stats.ErrorRate, 0.001)
	assert.Equal(t, 3, stats.RequestsLastHr)
}

func TestNopSink(t *testing.T) {
	var sink Sink = NopSink{}
	assert.Empty(t, sink.LogRequest(Record{Service: "oracle"}))
	sink.UpdateRequest("anything", Update{Status: StatusError})
}
