package ui

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/ericogr/accel-logger/pkg/chart"
	"github.com/gin-gonic/gin"
)

type currentResponse struct {
	Available bool    `json:"available"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Timestamp int64   `json:"timestamp"`
}

// currentValues prefers the live sample and falls back to the newest stored
// row before the first sample of this run arrives.
func (s *Server) currentValues(ctx context.Context) currentResponse {
	sample, ok := s.live.Latest()
	if !ok {
		row, found, err := s.store.Latest(ctx)
		if err != nil {
			s.logger.Printf("latest stored sample: %v", err)
			return currentResponse{}
		}
		if !found {
			return currentResponse{}
		}
		return currentResponse{
			Available: true,
			X:         float64(row.X),
			Y:         float64(row.Y),
			Z:         float64(row.Z),
			Timestamp: row.Timestamp,
		}
	}
	return currentResponse{
		Available: true,
		X:         sample.X,
		Y:         sample.Y,
		Z:         sample.Z,
		Timestamp: sample.Timestamp.UnixMilli(),
	}
}

func (s *Server) displayScreen(c *gin.Context) {
	c.HTML(http.StatusOK, "display.html", gin.H{
		"Current": s.currentValues(c.Request.Context()),
		"Notices": s.live.Notices(),
	})
}

func (s *Server) graphScreen(c *gin.Context) {
	series, err := s.loadSeries(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	count, err := s.store.Count(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	type plot struct {
		Title string
		SVG   template.HTML
	}
	plots := make([]plot, len(series))
	for i, sr := range series {
		var buf bytes.Buffer
		if err := chart.RenderSVG(&buf, sr, chartWidth, chartHeight); err != nil {
			s.fail(c, err)
			return
		}
		// go-chart output, not user input
		plots[i] = plot{Title: sr.Title, SVG: template.HTML(buf.String())}
	}
	c.HTML(http.StatusOK, "graph.html", gin.H{"Plots": plots, "Count": count})
}

func (s *Server) loadSeries(c *gin.Context) ([]chart.Series, error) {
	rows, err := s.store.AllData(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return chart.Build(rows), nil
}

func (s *Server) current(c *gin.Context) {
	c.JSON(http.StatusOK, s.currentValues(c.Request.Context()))
}

func (s *Server) recent(c *gin.Context) {
	c.JSON(http.StatusOK, s.live.Recent())
}

func (s *Server) graphData(c *gin.Context) {
	series, err := s.loadSeries(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (s *Server) notices(c *gin.Context) {
	c.JSON(http.StatusOK, s.live.Notices())
}

func (s *Server) export(c *gin.Context) {
	s.exporter.Start(s.ctx)
	c.JSON(http.StatusAccepted, gin.H{"status": "export started"})
}

func (s *Server) clearAll(c *gin.Context) {
	if err := s.store.DeleteAll(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
