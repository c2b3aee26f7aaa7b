package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// analyzeRequest тело запроса POST /api/v1/analyze.
type analyzeRequest struct {
	Text  string   `json:"text"`
	Files []string `json:"files"`
	City  string   `json:"city"`
}

// chatRequest тело запроса POST /api/v1/chat.
type chatRequest struct {
	RunID   string `json:"run_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAnalyze анализирует текст или список файлов и возвращает итоговую
// карточку тендера. При настроенном хранилище прогон сохраняется и в ответ
// попадает run_id.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" && len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either text or files must be provided"})
		return
	}

	city := strings.TrimSpace(req.City)
	if city == "" {
		city = s.cfg.DefaultCity
	}

	var record map[string]any
	var sources []string
	resp := gin.H{}

	if req.Text != "" {
		record = s.pipeline.AnalyzeText(c.Request.Context(), req.Text, city)
		sources = []string{"text"}
	} else {
		aggregated, results := s.pipeline.AnalyzeFiles(c.Request.Context(), req.Files, city)
		if len(results) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "none of the files could be read"})
			return
		}
		record = aggregated

		var files []gin.H
		for _, r := range results {
			sources = append(sources, r.Path)
			files = append(files, gin.H{
				"path":          r.Path,
				"document_type": r.DocumentType,
			})
		}
		resp["files"] = files
	}

	resp["record"] = record

	if s.store != nil {
		runID, err := s.store.SaveRun(c.Request.Context(), record, city, sources)
		if err != nil {
			s.logger.Warn("Не удалось сохранить прогон", "error", err)
		} else {
			resp["run_id"] = runID
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run storage is not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run storage is not configured"})
		return
	}

	run, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// handleChat отвечает на вопрос пользователя по сохраненной карточке.
func (s *Server) handleChat(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run storage is not configured"})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	run, err := s.store.GetRun(c.Request.Context(), req.RunID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.pipeline.Chat(c.Request.Context(), run.Record, req.Message)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
