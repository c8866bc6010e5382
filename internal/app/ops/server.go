package ops

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	syncports "github.com/tailtown/gingrsync/internal/domains/sync/ports"
	sharederrors "github.com/tailtown/gingrsync/internal/shared/errors"
)

// Server exposes the operational HTTP surface: health, sync status, and
// manual sync triggers.
type Server struct {
	orchestrator syncports.WorkflowOrchestrator
	tenants      syncports.TenantDirectory
	status       *StatusLog
	logger       *slog.Logger
	responder    *sharederrors.ChainedResponder
}

// NewServer wires the ops endpoints.
func NewServer(orchestrator syncports.WorkflowOrchestrator, tenants syncports.TenantDirectory, status *StatusLog, logger *slog.Logger) *Server {
	if status == nil {
		status = NewStatusLog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	responder := sharederrors.NewChainedResponder("", func(err error) (sharederrors.ProblemDetail, bool) {
		if errors.Is(err, syncports.ErrTenantNotFound) {
			return sharederrors.ErrNotFound.WithDetail(err.Error()), true
		}
		return sharederrors.ProblemDetail{}, false
	})
	return &Server{
		orchestrator: orchestrator,
		tenants:      tenants,
		status:       status,
		logger:       logger,
		responder:    responder,
	}
}

// Register attaches the ops routes to a gin engine.
func (s *Server) Register(router *gin.Engine) {
	router.GET("/healthz", s.health)
	router.GET("/syncs", s.listRuns)
	router.GET("/syncs/:tenantId", s.getRun)
	router.POST("/syncs/:tenantId", s.triggerRun)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRuns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"runs": s.status.List()})
}

func (s *Server) getRun(c *gin.Context) {
	tenantID := c.Param("tenantId")
	record, ok := s.status.Get(tenantID)
	if !ok {
		s.responder.Respond(c, sharederrors.NewNotFoundProblem("sync run", tenantID))
		return
	}
	c.JSON(http.StatusOK, record)
}

// triggerRun starts a tenant sync in the background and reports 202. A run
// already in flight for the tenant is a conflict, not a second run.
func (s *Server) triggerRun(c *gin.Context) {
	tenantID := c.Param("tenantId")
	if _, err := s.tenants.GetByID(c.Request.Context(), tenantID); err != nil {
		s.responder.RespondError(c, err)
		return
	}
	if record, ok := s.status.Get(tenantID); ok && record.Running {
		s.responder.Respond(c, sharederrors.ErrConflict.WithDetail("sync already running for tenant "+tenantID))
		return
	}

	s.status.Begin(tenantID)
	go func() {
		result, err := s.orchestrator.RunTenantSync(context.Background(), tenantID)
		if err != nil {
			s.logger.Error("triggered sync failed", slog.String("tenant", tenantID), slog.String("error", err.Error()))
		}
		s.status.Finish(tenantID, result)
	}()

	c.JSON(http.StatusAccepted, gin.H{"tenantId": tenantID, "status": "started"})
}
