package api

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pagekiln/page-kiln/app/records"
	"github.com/pagekiln/page-kiln/app/site"
)

func NewHandler(repo records.Repository, siteCfg *site.Config, outDir, version string) *Handler {
	return &Handler{
		repo:    repo,
		site:    siteCfg,
		outDir:  outDir,
		version: version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"site":      h.site.Title,
	}

	if _, err := os.Stat(h.outDir); err != nil {
		health["output"] = "missing"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	health["output"] = "ok"

	c.JSON(http.StatusOK, health)
}

// GetStats reports the latest build record: post counts, rebake counts
// and the per-year archive state.
func (h *Handler) GetStats(c *gin.Context) {
	record, err := h.repo.LoadLatest()
	if err != nil {
		slog.Error("Database error", "operation", "load_latest_record", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No build record yet"})
		return
	}

	rebaked := 0
	for _, entry := range record.Posts {
		if entry.SubBaked {
			rebaked++
		}
	}

	archives := make([]map[string]interface{}, 0, len(record.Archives))
	for _, entry := range record.Archives {
		archives = append(archives, map[string]interface{}{
			"year":      entry.Year,
			"out_paths": len(entry.OutPaths),
			"errors":    entry.Errors,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"build": map[string]interface{}{
			"id":         record.ID,
			"version":    record.Version,
			"created_at": record.CreatedAt.Format(time.RFC3339),
		},
		"posts": map[string]interface{}{
			"total":   len(record.Posts),
			"rebaked": rebaked,
		},
		"archives": archives,
	})
}
