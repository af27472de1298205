package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/juju/loggo"

	"github.com/voidshard/drguard/internal/telemetry"
	"github.com/voidshard/drguard/pkg/api"
	"github.com/voidshard/drguard/pkg/api/http/common"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	wait = 30 * time.Second
)

var logger = loggo.GetLogger("drguard.api.http")

type Server struct {
	addr       string
	debug      bool
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server
}

// userHandler is a handler that's been told who is asking
type userHandler func(w http.ResponseWriter, r *http.Request, user string)

func NewServer(addr string, debug bool) *Server {
	return &Server{
		addr:  addr,
		debug: debug,
		exit:  make(chan os.Signal, 1),
	}
}

// ServeForever serves the API until Close is called or we're interrupted.
func (s *Server) ServeForever(svc api.API) error {
	s.svc = svc
	telemetry.Register()

	s.httpserver = &http.Server{
		Handler:      s.router(),
		Addr:         s.addr,
		WriteTimeout: 15 * time.Minute, // sync retries run a whole restore
		ReadTimeout:  15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", s.httpserver.Addr)
		if err := s.httpserver.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	signal.Notify(s.exit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.exit)

	var err error
	select {
	case <-s.exit:
	case err = <-errs:
	}

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	s.httpserver.Shutdown(ctx)
	return err
}

func (s *Server) router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc(common.API_HEALTH, s.Health).Methods(http.MethodGet)
	router.Handle(common.API_METRICS, telemetry.Handler()).Methods(http.MethodGet)
	router.HandleFunc(common.API_POLICY, s.Policy).Methods(http.MethodGet)

	router.HandleFunc(common.API_VMS, s.withUser(s.VMs)).Methods(http.MethodGet)
	router.HandleFunc(common.API_RESTORE, s.withUser(s.Restore)).Methods(http.MethodPost)
	router.HandleFunc(common.API_BACKUP, s.withUser(s.Backup)).Methods(http.MethodPost)
	router.HandleFunc(common.API_BACKUPS, s.withUser(s.Backups)).Methods(http.MethodGet)
	router.HandleFunc(common.API_JOBS, s.withUser(s.Jobs)).Methods(http.MethodGet)
	router.HandleFunc(common.API_JOB, s.withUser(s.Job)).Methods(http.MethodGet)
	router.HandleFunc(common.API_RETRY, s.withUser(s.Retry)).Methods(http.MethodPost)

	if s.debug {
		logger.Debugf("debug enabled, adding per-request logging middleware")
		router.Use(loggingMiddleware)
	}
	return router
}

func (s *Server) Restore(w http.ResponseWriter, r *http.Request, user string) {
	vmid, err := pathInt(w, r, "vmid")
	if err != nil {
		return
	}
	// a policy denial wins over validation, so a bad body on a disabled
	// restore is handed to the service empty to be refused there
	req := &structs.RestoreRequest{}
	err = decodeJson(r, req, true)
	if err != nil {
		if s.svc.Policy().RestoreEnabled {
			badRequest(w, "%v", err)
			return
		}
		req = &structs.RestoreRequest{}
	}

	resp, err := s.svc.RequestRestore(r.Context(), user, vmid, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) Backup(w http.ResponseWriter, r *http.Request, user string) {
	vmid, err := pathInt(w, r, "vmid")
	if err != nil {
		return
	}
	req := &structs.BackupRequest{}
	err = unmarshalJson(w, r, req, true)
	if err != nil {
		return
	}

	resp, err := s.svc.RequestBackup(r.Context(), user, vmid, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) Retry(w http.ResponseWriter, r *http.Request, user string) {
	id, err := pathInt(w, r, "id")
	if err != nil {
		return
	}
	sync, err := queryBool(w, r, "sync")
	if err != nil {
		return
	}

	resp, err := s.svc.Retry(r.Context(), user, id, sync)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) Jobs(w http.ResponseWriter, r *http.Request, user string) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	resp, err := s.svc.Jobs(user, q)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.debug {
		logger.Debugf("%s returned %d items", r.URL, len(resp.Jobs))
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) Job(w http.ResponseWriter, r *http.Request, user string) {
	id, err := pathInt(w, r, "id")
	if err != nil {
		return
	}

	resp, err := s.svc.Job(user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) VMs(w http.ResponseWriter, r *http.Request, user string) {
	resp, err := s.svc.VMs(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) Backups(w http.ResponseWriter, r *http.Request, user string) {
	vmid, err := pathInt(w, r, "vmid")
	if err != nil {
		return
	}

	resp, err := s.svc.Backups(r.Context(), user, vmid, r.URL.Query().Get("storage"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) Policy(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, s.svc.Policy())
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}
