package httpapi

import (
	"errors"
	"net/http"

	"clubhub/internal/auth"
	"clubhub/internal/directory"
	"clubhub/internal/rbac"
	"clubhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// writeError maps directory errors onto the status codes the client expects.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	case errors.Is(err, directory.ErrStudentsOnly):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, directory.ErrNotMember),
		errors.Is(err, directory.ErrAlreadyRegistered),
		errors.Is(err, directory.ErrNotRegistered),
		errors.Is(err, directory.ErrUnknownClub),
		errors.Is(err, directory.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.FromGin(c).Error("directory request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// selfOr resolves the "me" shorthand in list filters.
func selfOr(c *gin.Context, v string) string {
	if v == "me" {
		uid, _ := auth.UserID(c.Request.Context())
		return uid
	}
	return v
}

// --- Clubs ---

func (h Handlers) ListClubs(c *gin.Context) {
	clubs, err := h.Directory.ListClubs(c.Request.Context(), directory.ClubFilter{
		MemberID: selfOr(c, c.Query("member")),
		AdminID:  selfOr(c, c.Query("admin")),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, clubs)
}

func (h Handlers) GetClub(c *gin.Context) {
	club, err := h.Directory.GetClub(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

func (h Handlers) CreateClub(c *gin.Context) {
	var in directory.ClubInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uid, _ := auth.UserID(c.Request.Context())
	club, err := h.Directory.CreateClub(c.Request.Context(), uid, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, club)
}

func (h Handlers) UpdateClub(c *gin.Context) {
	var p directory.ClubPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	club, err := h.Directory.UpdateClub(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

func (h Handlers) DeleteClub(c *gin.Context) {
	id := c.Param("id")
	if err := h.Directory.DeleteClub(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.Audit.LogResourceDeleted(c.Request.Context(), requestActor(c), "club", id)
	c.Status(http.StatusNoContent)
}

func (h Handlers) JoinClub(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := rbac.CurrentRole(c)
	if _, err := h.Directory.JoinClub(c.Request.Context(), c.Param("id"), uid, role); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "joined club"})
}

func (h Handlers) LeaveClub(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	if _, err := h.Directory.LeaveClub(c.Request.Context(), c.Param("id"), uid); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "left club"})
}

// --- Events ---

func (h Handlers) ListEvents(c *gin.Context) {
	events, err := h.Directory.ListEvents(c.Request.Context(), directory.EventFilter{
		AttendeeID: selfOr(c, c.Query("attendee")),
		ClubID:     c.Query("club"),
		CreatedBy:  selfOr(c, c.Query("created_by")),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h Handlers) GetEvent(c *gin.Context) {
	ev, err := h.Directory.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h Handlers) CreateEvent(c *gin.Context) {
	var in directory.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uid, _ := auth.UserID(c.Request.Context())
	ev, err := h.Directory.CreateEvent(c.Request.Context(), uid, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h Handlers) UpdateEvent(c *gin.Context) {
	var p directory.EventPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := h.Directory.UpdateEvent(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h Handlers) DeleteEvent(c *gin.Context) {
	id := c.Param("id")
	if err := h.Directory.DeleteEvent(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.Audit.LogResourceDeleted(c.Request.Context(), requestActor(c), "event", id)
	c.Status(http.StatusNoContent)
}

func (h Handlers) RegisterForEvent(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	if _, err := h.Directory.RegisterForEvent(c.Request.Context(), c.Param("id"), uid); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered for event"})
}

func (h Handlers) UnregisterFromEvent(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	if _, err := h.Directory.UnregisterFromEvent(c.Request.Context(), c.Param("id"), uid); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unregistered from event"})
}
