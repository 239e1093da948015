package http

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/audioengine/audioengine/internal/engine"
	"github.com/audioengine/audioengine/internal/output"
)

func respondError(c *gin.Context, err error) {
	c.JSON(engine.HTTPStatus(err), gin.H{"status": "error", "message": err.Error()})
}

func (s *Server) handleDevices(c *gin.Context) {
	wasapi, other := s.devices.Grouped()
	resp := devicesResponse{Status: "ok"}
	resp.Devices.WASAPI = toDeviceDTOs(wasapi)
	resp.Devices.Other = toDeviceDTOs(other)
	c.JSON(http.StatusOK, resp)
}

func toDeviceDTOs(devices []output.Device) []deviceDTO {
	out := make([]deviceDTO, len(devices))
	for i, d := range devices {
		out[i] = deviceDTO{
			ID:                d.ID,
			Name:              d.Name,
			HostAPI:           d.HostAPI,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		}
	}
	return out
}

func (s *Server) handleLoad(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing path"})
		return
	}
	if _, statErr := os.Stat(req.Path); statErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "file not found"})
		return
	}
	if err := s.engine.Load(req.Path); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}

func (s *Server) handlePlay(c *gin.Context) {
	if err := s.engine.Play(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}

func (s *Server) handlePause(c *gin.Context) {
	if err := s.engine.Pause(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}

func (s *Server) handleStop(c *gin.Context) {
	if err := s.engine.Stop(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}

func (s *Server) handleSeek(c *gin.Context) {
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}
	if err := s.engine.Seek(req.Position); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}

func (s *Server) handleVolume(c *gin.Context) {
	var req volumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}
	if err := s.engine.SetVolume(req.Volume); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}

func (s *Server) handleSetEQ(c *gin.Context) {
	var req setEQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}
	if err := s.engine.SetEQ(req.Bands, req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}

func (s *Server) handleConfigureOutput(c *gin.Context) {
	var req configureOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}
	if err := s.engine.ConfigureOutput(req.DeviceID, req.Exclusive); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}

func (s *Server) handleConfigureUpsampling(c *gin.Context) {
	var req configureUpsamplingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}
	if err := s.engine.ConfigureUpsampling(req.TargetSampleRate); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, okNoState())
}

func (s *Server) handleGetState(c *gin.Context) {
	c.JSON(http.StatusOK, ok(s.engine.GetState()))
}
