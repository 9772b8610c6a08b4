package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/middleware"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/internal/service"
	"github.com/noah-isme/school-console/pkg/response"
)

const eventHeartbeat = 15 * time.Second

// DashboardHandler exposes the dashboard context of the current console session.
type DashboardHandler struct {
	sessionScope
	heartbeat time.Duration
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(loginPath string) *DashboardHandler {
	return &DashboardHandler{sessionScope: sessionScope{loginPath: loginPath}, heartbeat: eventHeartbeat}
}

// Context godoc
// @Summary Dashboard context snapshot
// @Description Bundle, filters, loading flag and display names of the current session.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/context [get]
func (h *DashboardHandler) Context(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	snap := session.Dashboard.Snapshot()
	middleware.SetLoading(c, snap.IsLoading)
	response.JSON(c, http.StatusOK, snap, nil, withMeta(c))
}

// UpdateFilters godoc
// @Summary Update dashboard filters
// @Description Merges the given fields into the filters. Filter changes are debounced; page changes fetch at once.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body models.FilterPatch true "Filter fields to change"
// @Success 200 {object} response.Envelope
// @Router /dashboard/filters [patch]
func (h *DashboardHandler) UpdateFilters(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var patch models.FilterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	change := session.Dashboard.UpdateFilters(patch)
	response.JSON(c, http.StatusOK, filterUpdate(session, change), nil)
}

// ClearFilters godoc
// @Summary Clear all dashboard filters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/filters [delete]
func (h *DashboardHandler) ClearFilters(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	change := session.Dashboard.ClearAllFilters()
	response.JSON(c, http.StatusOK, filterUpdate(session, change), nil)
}

// Refetch godoc
// @Summary Refetch dashboard data
// @Description Fetches at once. Overrides apply to this fetch only and leave the filters untouched.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body dto.RefetchRequest false "Optional overrides"
// @Success 202 {object} response.Envelope
// @Router /dashboard/refetch [post]
func (h *DashboardHandler) Refetch(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.RefetchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
			response.Error(c, invalidPayload(err))
			return
		}
	}
	seq := session.Dashboard.RefetchData(req.Overrides)
	middleware.SetRefetched(c, seq)
	response.JSON(c, http.StatusAccepted, dto.RefetchResponse{Sequence: seq, IsLoading: session.Dashboard.IsLoading()}, nil, withMeta(c))
}

// DisplayNames godoc
// @Summary Filter display names
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/display-names [get]
func (h *DashboardHandler) DisplayNames(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session.Dashboard.GetFilterDisplayNames(), nil)
}

// Events godoc
// @Summary Stream dashboard snapshots
// @Description Server-sent events: one "snapshot" event on connect and after every change. Pass the session id as ?session= when headers cannot be set.
// @Tags Dashboard
// @Produce text/event-stream
// @Success 200
// @Router /dashboard/events [get]
func (h *DashboardHandler) Events(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	// Only the newest snapshot matters; a slow client skips intermediate ones.
	updates := make(chan service.DashboardSnapshot, 1)
	unsubscribe := session.Dashboard.Subscribe(func(snap service.DashboardSnapshot) {
		select {
		case updates <- snap:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- snap:
			default:
			}
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", session.Dashboard.Snapshot())
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	done := session.Dashboard.Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-done:
			c.SSEvent("closed", gin.H{"redirect": h.loginPath})
			return false
		case snap := <-updates:
			c.SSEvent("snapshot", snap)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}

func filterUpdate(session *service.ConsoleSession, change service.FilterChange) dto.FilterUpdateResponse {
	return dto.FilterUpdateResponse{
		Filters:   session.Dashboard.Filters(),
		Changed:   change.Changed,
		Debounced: change.FilterFields,
		IsLoading: session.Dashboard.IsLoading(),
	}
}
