package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"

	"github.com/conuredb/rosterdb/pkg/config"
)

const defaultSeed = "http://roster-0.roster-hs:8081"

type joinRequest struct {
	ID       string `json:"ID"`
	RaftAddr string `json:"RaftAddr"`
}

type leaderHintResp struct {
	Leader string `json:"leader"`
}

// seeds returns the HTTP addresses to contact when joining: ROSTER_SEEDS
// (comma separated) wins over the config file.
func seeds(cfg config.Config) []string {
	if v := os.Getenv("ROSTER_SEEDS"); v != "" {
		var out []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if len(cfg.Seeds) > 0 {
		return cfg.Seeds
	}
	return []string{defaultSeed}
}

type joiner struct {
	client   *http.Client
	seeds    []string
	nodeID   string
	raftAddr string
	httpPort string
	logger   hclog.Logger
}

// run posts a join request to each seed in turn, following leader hints,
// until one succeeds or ctx is done. Backoff grows by half up to 30s.
func (j *joiner) run(ctx context.Context, backoff time.Duration) {
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	j.logger.Info("starting cluster join", "seeds", j.seeds)

	if j.alreadyMember(ctx) {
		j.logger.Info("already a cluster member, skipping join")
		return
	}

	for attempt := 1; ; attempt++ {
		for _, seed := range j.seeds {
			err := j.joinVia(ctx, seed)
			if err == nil {
				j.logger.Info("joined cluster", "seed", seed, "attempt", attempt)
				return
			}
			j.logger.Debug("join attempt failed", "seed", seed, "attempt", attempt, "error", err)
		}

		j.logger.Warn("join round failed", "attempt", attempt, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(time.Duration(float64(backoff)*1.5), 30*time.Second)
	}
}

func (j *joiner) joinVia(ctx context.Context, seed string) error {
	u, err := url.Parse(seed)
	if err != nil {
		return errors.Wrapf(err, "seed %q", seed)
	}
	u.Path = "/join"

	resp, err := j.post(ctx, u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		var h leaderHintResp
		if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
			return errors.Wrap(err, "decode leader hint")
		}
		if h.Leader == "" {
			return errors.New("no leader elected yet")
		}
		return j.joinLeader(ctx, h.Leader)
	default:
		return errors.Newf("unexpected status %d from %s", resp.StatusCode, seed)
	}
}

// joinLeader posts to the leader's HTTP API. The hint carries the raft
// address, so the host is kept and the port replaced by ours.
func (j *joiner) joinLeader(ctx context.Context, leaderRaftAddr string) error {
	host := leaderRaftAddr
	if h, _, ok := strings.Cut(leaderRaftAddr, ":"); ok {
		host = h
	}
	resp, err := j.post(ctx, "http://"+host+":"+j.httpPort+"/join")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("leader %s answered %d", leaderRaftAddr, resp.StatusCode)
	}
	return nil
}

func (j *joiner) post(ctx context.Context, target string) (*http.Response, error) {
	body, err := json.Marshal(joinRequest{ID: j.nodeID, RaftAddr: j.raftAddr})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return j.client.Do(req)
}

// alreadyMember asks each seed for the raft configuration and reports
// whether it already lists this node.
func (j *joiner) alreadyMember(ctx context.Context) bool {
	for _, seed := range j.seeds {
		u, err := url.Parse(seed)
		if err != nil {
			continue
		}
		u.Path = "/raft/config"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			continue
		}
		resp, err := j.client.Do(req)
		if err != nil {
			continue
		}
		var cfg struct {
			Servers []struct {
				ID string `json:"id"`
			} `json:"servers"`
		}
		err = json.NewDecoder(resp.Body).Decode(&cfg)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			continue
		}
		for _, s := range cfg.Servers {
			if s.ID == j.nodeID {
				return true
			}
		}
	}
	return false
}
