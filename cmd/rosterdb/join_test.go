package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

func TestJoinFollowsLeaderHint(t *testing.T) {
	var joined atomic.Value
	leader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var jr joinRequest
		if err := json.NewDecoder(r.Body).Decode(&jr); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		joined.Store(jr)
		w.WriteHeader(http.StatusOK)
	}))
	defer leader.Close()

	seed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/raft/config":
			_ = json.NewEncoder(w).Encode(map[string]any{"servers": []map[string]string{{"id": "node1"}}})
		case "/join":
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(leaderHintResp{Leader: "127.0.0.1:7001"})
		}
	}))
	defer seed.Close()

	u, _ := url.Parse(leader.URL)
	_, port, _ := net.SplitHostPort(u.Host)

	j := &joiner{
		client:   leader.Client(),
		seeds:    []string{seed.URL},
		nodeID:   "node2",
		raftAddr: "127.0.0.1:7002",
		httpPort: port,
		logger:   hclog.NewNullLogger(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	j.run(ctx, 10*time.Millisecond)

	got, ok := joined.Load().(joinRequest)
	if !ok {
		t.Fatalf("leader never received a join request")
	}
	if got.ID != "node2" || got.RaftAddr != "127.0.0.1:7002" {
		t.Fatalf("unexpected join request: %+v", got)
	}
}

func TestJoinSkipsExistingMember(t *testing.T) {
	var joins atomic.Int32
	seed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/raft/config":
			_ = json.NewEncoder(w).Encode(map[string]any{"servers": []map[string]string{{"id": "node1"}, {"id": "node2"}}})
		case "/join":
			joins.Add(1)
		}
	}))
	defer seed.Close()

	j := &joiner{
		client: seed.Client(),
		seeds:  []string{seed.URL},
		nodeID: "node2",
		logger: hclog.NewNullLogger(),
	}
	j.run(context.Background(), time.Millisecond)
	if n := joins.Load(); n != 0 {
		t.Fatalf("expected no join requests, got %d", n)
	}
}

func TestJoinStopsOnCancel(t *testing.T) {
	seed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer seed.Close()

	j := &joiner{
		client: seed.Client(),
		seeds:  []string{seed.URL},
		nodeID: "node2",
		logger: hclog.NewNullLogger(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		j.run(ctx, 10*time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("join loop ignored cancellation")
	}
}
