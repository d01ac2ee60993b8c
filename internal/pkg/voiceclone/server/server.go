// Package server is the browser front end: a single embedded page plus a
// small JSON API over the same cloning service the CLI uses.
package server

import (
	"embed"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/clone"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/lang"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/store"
)

//go:embed web
var webFS embed.FS

type Server struct {
	cloner  *clone.Cloner
	history *store.Store // optional
}

func New(cloner *clone.Cloner, history *store.Store) *Server {
	return &Server{cloner: cloner, history: history}
}

// Router builds the gin engine with logging, recovery and CORS, the UI
// page, the outputs file server and the JSON API.
func (s *Server) Router(debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/", s.handleIndex)
	router.Static("/outputs", s.cloner.OutputDir())

	api := router.Group("/api")
	api.GET("/voices", s.handleVoices)
	api.GET("/languages", s.handleLanguages)
	api.POST("/synthesize", s.handleSynthesize)
	api.GET("/history", s.handleHistory)

	return router
}

func (s *Server) Run(addr string, debug bool) error {
	log.Info().Str("addr", "http://"+addr).Msg("Starting browser UI")
	return s.Router(debug).Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ui page missing")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

type voiceFile struct {
	Label       string  `json:"label"`
	Voice       string  `json:"voice"`
	DurationSec float64 `json:"duration_sec"`
}

type voiceInfo struct {
	Name    string      `json:"name"`
	Ready   bool        `json:"ready"`
	Samples int         `json:"samples"`
	Files   []voiceFile `json:"files"`
}

func (s *Server) handleVoices(c *gin.Context) {
	profiles, err := s.cloner.Voices().List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]voiceInfo, 0, len(profiles))
	for _, p := range profiles {
		info := voiceInfo{
			Name:    p.Name,
			Ready:   p.Ready(),
			Samples: len(p.Samples),
		}
		if p.Ready() {
			info.Files = append(info.Files, voiceFile{
				Label:       p.Name + "/" + filepath.Base(p.CombinedPath),
				Voice:       p.CombinedPath,
				DurationSec: clone.ReferenceDuration(p.CombinedPath),
			})
		}
		for _, sample := range p.Samples {
			info.Files = append(info.Files, voiceFile{
				Label:       p.Name + "/" + filepath.Base(sample),
				Voice:       sample,
				DurationSec: clone.ReferenceDuration(sample),
			})
		}
		out = append(out, info)
	}

	respondSuccess(c, out)
}

type languageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) handleLanguages(c *gin.Context) {
	out := make([]languageInfo, 0, len(lang.Codes))
	for _, code := range lang.Codes {
		out = append(out, languageInfo{Code: code, Name: lang.Name(code)})
	}
	respondSuccess(c, out)
}

type synthesizeRequest struct {
	Text     string  `json:"text" binding:"required"`
	Voice    string  `json:"voice" binding:"required"`
	Language string  `json:"language"`
	Speed    float32 `json:"speed"`
}

type synthesizeResponse struct {
	OutputURL   string  `json:"output_url"`
	DurationSec float64 `json:"duration_sec"`
	SizeBytes   int64   `json:"size_bytes"`
}

func (s *Server) handleSynthesize(c *gin.Context) {
	var req synthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Speed == 0 {
		req.Speed = 1.0
	}
	if req.Speed < 0.5 || req.Speed > 2.0 {
		respondError(c, http.StatusBadRequest, "speed must be between 0.5 and 2.0")
		return
	}

	name := "web_" + uuid.NewString()[:8] + ".wav"
	result, err := s.cloner.Synthesize(c.Request.Context(), clone.Request{
		Text:       req.Text,
		Voice:      req.Voice,
		Language:   req.Language,
		Speed:      req.Speed,
		OutputPath: filepath.Join(s.cloner.OutputDir(), name),
		Origin:     "web",
	})
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondSuccess(c, synthesizeResponse{
		OutputURL:   "/outputs/" + filepath.Base(result.OutputPath),
		DurationSec: result.DurationSec,
		SizeBytes:   result.SizeBytes,
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		respondSuccess(c, []store.Generation{})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	entries, err := s.history.Recent(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondSuccess(c, entries)
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}
