package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/app"
	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

// Controller maps the REST surface onto the coordinator. Handles are
// tracked per (client token, session) so leave/run/doc find the right
// membership.
type Controller struct {
	coord *app.Coordinator

	mu      sync.RWMutex
	handles map[string]string // client+session -> handle id
}

func NewController(coord *app.Coordinator) *Controller {
	return &Controller{
		coord:   coord,
		handles: make(map[string]string),
	}
}

func handleKey(clientToken, session string) string {
	return clientToken + "|" + session
}

func (ctl *Controller) handleFor(c *gin.Context) (*app.Handle, bool) {
	key := handleKey(c.GetString("client_token"), c.Param("name"))
	ctl.mu.RLock()
	id, ok := ctl.handles[key]
	ctl.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ctl.coord.Handle(id)
}

type joinRequest struct {
	Username    string       `json:"username" binding:"required"`
	Video       bool         `json:"video"`
	Audio       bool         `json:"audio"`
	VideoDevice string       `json:"video_device"`
	AudioDevice string       `json:"audio_device"`
	Codec       domain.Codec `json:"codec"`
	HQ          bool         `json:"hq"`
	Region      string       `json:"region"`
	Passphrase  string       `json:"passphrase"`
}

func (ctl *Controller) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := domain.NewSession(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session.Region = req.Region
	session.Passphrase = req.Passphrase
	if req.Codec != "" {
		session.Codec = req.Codec
	}
	if req.HQ {
		session.Quality = domain.QualityHigh
	}

	choices, err := domain.NewParticipantChoices(req.Username, req.Video, req.Audio)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	choices.VideoDeviceID = req.VideoDevice
	choices.AudioDeviceID = req.AudioDevice

	h, err := ctl.coord.Join(c.Request.Context(), *session, choices)
	if err != nil {
		status, kind := joinErrorStatus(err)
		c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
		return
	}

	key := handleKey(c.GetString("client_token"), c.Param("name"))
	ctl.mu.Lock()
	ctl.handles[key] = h.ID
	ctl.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"handle":    h.ID,
		"session":   session.Name,
		"state":     h.State().String(),
		"encrypted": h.Encrypted(),
	})
}

// joinErrorStatus maps the typed taxonomy onto HTTP statuses. Encryption
// and credential failures carry a retry affordance client-side; the kind
// travels with the payload.
func joinErrorStatus(err error) (int, string) {
	var encErr *core.EncryptionError
	if errors.As(err, &encErr) {
		return http.StatusBadGateway, string(encErr.Kind)
	}
	var connErr *core.ConnectionError
	if errors.As(err, &connErr) {
		return http.StatusBadGateway, string(connErr.Kind)
	}
	if errors.Is(err, app.ErrRunInFlight) {
		return http.StatusConflict, "run_in_flight"
	}
	return http.StatusInternalServerError, "internal"
}

func (ctl *Controller) Leave(c *gin.Context) {
	h, ok := ctl.handleFor(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": app.ErrHandleNotFound.Error()})
		return
	}
	ctl.coord.Leave(h)

	key := handleKey(c.GetString("client_token"), c.Param("name"))
	ctl.mu.Lock()
	delete(ctl.handles, key)
	ctl.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"left": h.Session.Name})
}

type runRequest struct {
	Code     string          `json:"code"`
	Language domain.Language `json:"language" binding:"required"`
}

// Run relays code execution. Relay-level failures still produce a job
// payload; per the propagation policy the error lands in the job's
// error/stderr fields instead of a bare 5xx.
func (ctl *Controller) Run(c *gin.Context) {
	h, ok := ctl.handleFor(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": app.ErrHandleNotFound.Error()})
		return
	}

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := ctl.coord.RunCode(c.Request.Context(), h, req.Code, req.Language)
	if err != nil && job == nil {
		if errors.Is(err, app.ErrRunInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Warn().
			Str("module", "adapters.http").
			Str("job", job.ID).
			Err(err).
			Msg("execution failed")
	}
	c.JSON(http.StatusOK, job)
}

func (ctl *Controller) Job(c *gin.Context) {
	job, err := ctl.coord.Job(c.Request.Context(), c.Param("token"))
	if errors.Is(err, core.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (ctl *Controller) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.coord.Sessions())
}
