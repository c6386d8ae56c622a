package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/betbot/matchscreener/internal/domain"
	"github.com/betbot/matchscreener/internal/services"
)

func (s *Server) handleView(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

type viewModeRequest struct {
	Mode  string `json:"mode"`
	Cycle bool   `json:"cycle"`
}

func (s *Server) handleViewMode(c *gin.Context) {
	var req viewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if req.Cycle {
		s.engine.CycleView()
	} else {
		s.engine.SetViewMode(services.ParseViewMode(req.Mode))
	}
	c.Status(http.StatusNoContent)
}

type viewLeagueRequest struct {
	League string `json:"league"`
}

func (s *Server) handleViewLeague(c *gin.Context) {
	var req viewLeagueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	league := strings.TrimSpace(req.League)
	if league == "" {
		league = services.LeagueAll
	}
	s.engine.SetLeague(league)
	c.Status(http.StatusNoContent)
}

type dayRequest struct {
	Day string `json:"day"` // YYYYMMDD, empty follows the local date
}

func (s *Server) handleDay(c *gin.Context) {
	var req dayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	day := strings.TrimSpace(req.Day)
	if day != "" {
		if _, ok := domain.ParseDateKey(day); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYYMMDD"})
			return
		}
	}
	s.engine.SetDay(day)
	c.Status(http.StatusNoContent)
}

type bookmarkToggleRequest struct {
	EventID string `json:"event_id"`
	Kind    string `json:"kind"` // maybe | bet
}

func (s *Server) handleBookmarkToggle(c *gin.Context) {
	var req bookmarkToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	id := domain.NormalizeID(req.EventID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id is required"})
		return
	}
	var kind domain.BookmarkKind
	switch req.Kind {
	case string(domain.BookmarkMaybe):
		kind = domain.BookmarkMaybe
	case string(domain.BookmarkBet):
		kind = domain.BookmarkBet
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be maybe or bet"})
		return
	}
	s.engine.ToggleBookmark(kind, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRemove(c *gin.Context) {
	id := domain.NormalizeID(c.Param("eventID"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event id is required"})
		return
	}
	s.engine.Remove(id)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUndo(c *gin.Context) {
	s.engine.Undo()
	c.Status(http.StatusNoContent)
}

type visibleRequest struct {
	EventIDs []string `json:"event_ids"`
}

func (s *Server) handleVisible(c *gin.Context) {
	var req visibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	ids := make([]string, 0, len(req.EventIDs))
	for _, raw := range req.EventIDs {
		if id := domain.NormalizeID(raw); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		s.engine.MarkVisible(ids...)
	}
	c.Status(http.StatusNoContent)
}
