package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"
	"github.com/julienschmidt/httprouter"

	"github.com/conuredb/rosterdb/btree"
	"github.com/conuredb/rosterdb/db"
	"github.com/conuredb/rosterdb/pkg/raftnode"
	"github.com/conuredb/rosterdb/roster"
)

// Replicator is the part of a raft node the API drives.
type Replicator interface {
	IsLeader() bool
	Leader() string
	Apply(cmd raftnode.Command, timeout time.Duration) error
	Barrier(timeout time.Duration) error
	AddVoter(id, addr string) error
	Servers() ([]string, error)
}

type Server struct {
	node           Replicator
	db             *db.DB
	logger         hclog.Logger
	metrics        *metrics
	barrierTimeout time.Duration
	applyTimeout   time.Duration
}

func New(node Replicator, db *db.DB, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		node:           node,
		db:             db,
		logger:         logger.Named("api"),
		metrics:        newMetrics(db),
		barrierTimeout: 3 * time.Second,
		applyTimeout:   5 * time.Second,
	}
}

// WithBarrierTimeout sets how long a leader read waits for pending entries to apply.
func (s *Server) WithBarrierTimeout(d time.Duration) *Server {
	if d > 0 {
		s.barrierTimeout = d
	}
	return s
}

// WithApplyTimeout sets how long a write waits to be committed.
func (s *Server) WithApplyTimeout(d time.Duration) *Server {
	if d > 0 {
		s.applyTimeout = d
	}
	return s
}

// Handler returns the routed HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/students", s.handleList)
	router.POST("/students", s.handleInsert)
	router.DELETE("/students", s.handleDelete)
	router.GET("/contains", s.handleContains)
	router.GET("/at/:index", s.handleElementAt)
	router.GET("/tree", s.handleTree)
	router.GET("/status", s.handleStatus)
	router.GET("/raft/config", s.handleRaftConfig)
	router.POST("/join", s.handleJoin)
	router.Handler(http.MethodGet, "/metrics", s.metrics.handler())
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, route string, status int, err error) {
	s.metrics.errors.WithLabelValues(route, strconv.Itoa(status)).Inc()
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}

// errorStatus maps roster errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, btree.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, db.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, db.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) redirectToLeader(w http.ResponseWriter) {
	writeJSON(w, http.StatusConflict, map[string]string{"leader": s.node.Leader()})
}

// readable reports whether this node may serve a read, waiting for
// pending entries when it is the leader. Followers serve reads only when
// the request asks for stale data.
func (s *Server) readable(w http.ResponseWriter, r *http.Request, route string) bool {
	if s.node.IsLeader() {
		if err := s.node.Barrier(s.barrierTimeout); err != nil {
			s.writeError(w, route, http.StatusServiceUnavailable, err)
			return false
		}
		return true
	}
	if stale, _ := strconv.ParseBool(r.URL.Query().Get("stale")); stale {
		return true
	}
	s.redirectToLeader(w)
	return false
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats := s.db.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"is_leader": s.node.IsLeader(),
		"leader":    s.node.Leader(),
		"students":  stats.Size,
		"height":    stats.Height,
		"nodes":     stats.Nodes,
	})
}

func (s *Server) handleRaftConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ids, err := s.node.Servers()
	if err != nil {
		s.writeError(w, "raft_config", http.StatusServiceUnavailable, err)
		return
	}
	type server struct {
		ID string `json:"id"`
	}
	servers := make([]server, 0, len(ids))
	for _, id := range ids {
		servers = append(servers, server{ID: id})
	}
	writeJSON(w, http.StatusOK, map[string]any{"servers": servers})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct{ ID, RaftAddr string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, "join", http.StatusBadRequest, err)
		return
	}
	if !s.node.IsLeader() {
		s.redirectToLeader(w)
		return
	}
	if err := s.node.AddVoter(body.ID, body.RaftAddr); err != nil {
		s.writeError(w, "join", http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("added voter", "id", body.ID, "raft_addr", body.RaftAddr)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.node.IsLeader() {
		s.redirectToLeader(w)
		return
	}
	var student roster.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		s.writeError(w, "insert", http.StatusBadRequest, err)
		return
	}
	cmd := raftnode.Command{Type: raftnode.CmdInsert, Student: student}
	if err := s.node.Apply(cmd, s.applyTimeout); err != nil {
		s.logger.Error("apply insert", "red_id", student.RedID, "error", err)
		s.writeError(w, "insert", errorStatus(err), err)
		return
	}
	s.metrics.inserts.Inc()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleDelete rejects every removal on any node. Nothing is proposed to
// raft; the FSM's own rejection of delete commands only guards the log.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var student roster.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		s.writeError(w, "delete", http.StatusBadRequest, err)
		return
	}
	err := errors.Wrapf(db.ErrUnsupported, "red_id %d", student.RedID)
	s.writeError(w, "delete", http.StatusNotImplemented, err)
}

func (s *Server) handleContains(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	probe, err := probeFromQuery(r)
	if err != nil {
		s.writeError(w, "contains", http.StatusBadRequest, err)
		return
	}
	if !s.readable(w, r, "contains") {
		return
	}
	found, err := s.db.Contains(probe)
	if err != nil {
		s.writeError(w, "contains", errorStatus(err), err)
		return
	}
	s.metrics.lookups.WithLabelValues(strconv.FormatBool(found)).Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"found": found})
}

func (s *Server) handleElementAt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		s.writeError(w, "at", http.StatusBadRequest, errors.Wrap(err, "index"))
		return
	}
	if !s.readable(w, r, "at") {
		return
	}
	student, err := s.db.ElementAt(index)
	if err != nil {
		s.writeError(w, "at", errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.readable(w, r, "tree") {
		return
	}
	out, err := s.db.Render()
	if err != nil {
		s.writeError(w, "tree", errorStatus(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := parseListQuery(r)
	if err != nil {
		s.writeError(w, "list", http.StatusBadRequest, err)
		return
	}
	if !s.readable(w, r, "list") {
		return
	}

	var students []roster.Student
	switch {
	case q.order == nil && q.keep == nil && q.descending:
		students, err = s.db.Descending()
	default:
		students, err = s.db.Query(q.order, q.keep)
		if err == nil && q.descending {
			slices.Reverse(students)
		}
	}
	if err != nil {
		s.writeError(w, "list", errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}
