package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/conuredb/rosterdb/roster"
)

type leaderHint struct {
	Leader string `json:"leader"`
}

// RemoteClient talks to the HTTP API and follows leader redirects. It
// implements repl.Backend.
type RemoteClient struct {
	HTTP *http.Client
	Base *url.URL
}

func (rc *RemoteClient) do(method, path string, q url.Values, body []byte) (*http.Response, error) {
	u := *rc.Base
	u.Path = path
	u.RawQuery = q.Encode()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, u.String(), r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return rc.HTTP.Do(req)
}

// withLeader points the client at the leader named by h. The hint is a
// raft address; the HTTP port is assumed to match ours.
func (rc *RemoteClient) withLeader(h leaderHint) {
	if h.Leader == "" {
		return
	}
	leaderHost := h.Leader
	if h, _, ok := strings.Cut(leaderHost, ":"); ok {
		leaderHost = h
	}
	port := rc.Base.Port()
	if port == "" {
		port = "8081"
	}
	b := *rc.Base
	b.Host = leaderHost + ":" + port
	rc.Base = &b
}

// call issues a request, retrying against the leader on 409, and decodes
// a successful response into out unless out is nil.
func (rc *RemoteClient) call(method, path string, q url.Values, body []byte, out any) error {
	for retries := 0; retries < 3; retries++ {
		resp, err := rc.do(method, path, q, body)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			switch v := out.(type) {
			case nil:
				return nil
			case *string:
				*v = string(data)
				return nil
			default:
				return json.Unmarshal(data, out)
			}
		case http.StatusConflict:
			var h leaderHint
			_ = json.Unmarshal(data, &h)
			rc.withLeader(h)
		default:
			return errors.Newf("%s (status %d)", strings.TrimSpace(string(data)), resp.StatusCode)
		}
	}
	return errors.New("leader redirect loop")
}

func (rc *RemoteClient) Insert(s roster.Student) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return rc.call(http.MethodPost, "/students", nil, body, nil)
}

func (rc *RemoteClient) Delete(s roster.Student) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return rc.call(http.MethodDelete, "/students", nil, body, nil)
}

func (rc *RemoteClient) Contains(probe roster.Student) (bool, error) {
	q := url.Values{
		"name":  {probe.Name},
		"redid": {strconv.Itoa(probe.RedID)},
		"gpa":   {roster.FormatGPA(probe.GPA)},
	}
	var resp struct {
		Found bool `json:"found"`
	}
	err := rc.call(http.MethodGet, "/contains", q, nil, &resp)
	return resp.Found, err
}

func (rc *RemoteClient) List(descending bool) ([]roster.Student, error) {
	q := url.Values{}
	if descending {
		q.Set("order", "desc")
	}
	var students []roster.Student
	err := rc.call(http.MethodGet, "/students", q, nil, &students)
	return students, err
}

func (rc *RemoteClient) ElementAt(index int) (roster.Student, error) {
	var s roster.Student
	err := rc.call(http.MethodGet, "/at/"+strconv.Itoa(index), nil, nil, &s)
	return s, err
}

func (rc *RemoteClient) Tree() (string, error) {
	var out string
	err := rc.call(http.MethodGet, "/tree", nil, nil, &out)
	return out, err
}
