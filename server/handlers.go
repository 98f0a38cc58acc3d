package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dpapukchiev/ridehail-sim/logging"
	"github.com/dpapukchiev/ridehail-sim/scenario"
)

func (s *Server) registerRoutes() {
	s.engine.GET("/api/route", s.handleRoute)
	s.engine.POST("/api/control", s.handleControl)
	s.engine.POST("/api/reset", s.handleReset)
	s.engine.GET("/api/snapshot", s.handleSnapshot)
	s.engine.GET("/api/stream", s.handleStream)
}

// routeResponse describes the static scenario geography and tuning a
// front-end needs before it starts rendering snapshots (spec §6
// Scenario/Matching/Pricing groups).
type routeResponse struct {
	RunID          string  `json:"run_id"`
	Seed           int64   `json:"seed"`
	LatMin         float64 `json:"lat_min"`
	LatMax         float64 `json:"lat_max"`
	LngMin         float64 `json:"lng_min"`
	LngMax         float64 `json:"lng_max"`
	NumRiders      int     `json:"num_riders"`
	NumDrivers     int     `json:"num_drivers"`
	Algorithm      string  `json:"matching_algorithm"`
	SurgeEnabled   bool    `json:"surge_enabled"`
	RepositionOn   bool    `json:"reposition_enabled"`
}

func (s *Server) handleRoute(c *gin.Context) {
	sc := s.scenario()
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	c.JSON(http.StatusOK, routeResponse{
		RunID:        sc.RunID.String(),
		Seed:         cfg.Scenario.Seed,
		LatMin:       cfg.Scenario.LatMin,
		LatMax:       cfg.Scenario.LatMax,
		LngMin:       cfg.Scenario.LngMin,
		LngMax:       cfg.Scenario.LngMax,
		NumRiders:    cfg.Scenario.NumRiders,
		NumDrivers:   cfg.Scenario.NumDrivers,
		Algorithm:    cfg.Matching.Algorithm,
		SurgeEnabled: cfg.Pricing.SurgeEnabled,
		RepositionOn: cfg.Reposition.Enabled,
	})
}

// controlRequest carries a playback speed and a pause toggle; unlike the
// teacher's handleControl body it has no arrival-rate knob and no ConnID,
// since this server paces one shared Scenario rather than a
// connection-scoped simulation.
type controlRequest struct {
	Speed  *float64 `json:"speed"`
	Paused *bool    `json:"paused"`
}

func (s *Server) handleControl(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Speed != nil {
		sp := *req.Speed
		if sp < 0 {
			sp = 0
		}
		if sp > 10_000 {
			sp = 10_000
		}
		s.speed.Store(sp)
		s.log.WithField("speed", sp).Info("control: playback speed changed")
	}
	if req.Paused != nil {
		s.paused.Store(*req.Paused)
		s.log.WithField("paused", *req.Paused).Info("control: playback pause toggled")
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleReset(c *gin.Context) {
	s.mu.Lock()
	cfg := s.cfg
	newSc, err := scenario.Build(cfg, s.osrmClient)
	if err != nil {
		s.mu.Unlock()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.sc = newSc
	s.log = logging.WithComponent(s.sc.Log, "server")
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"run_id": newSc.RunID.String()})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	sc := s.scenario()
	snap, ok := sc.World.Trips.Latest()
	if !ok {
		c.JSON(http.StatusNoContent, nil)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("stream: websocket upgrade failed")
		return
	}
	s.hub.add(conn)
	s.log.WithField("clients", s.hub.count()).Debug("stream: client connected")

	if snap, ok := s.scenario().World.Trips.Latest(); ok {
		if werr := conn.WriteJSON(snap); werr != nil {
			s.hub.remove(conn)
			return
		}
	}

	// Drain inbound control frames (pings, client close) until the
	// connection errors or closes; this server pushes and never expects
	// a reply payload.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.remove(conn)
			return
		}
	}
}
