package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/database"
	"github.com/calcomb/cal-comb/app/ical"
)

func NewHandler(processor ProcessorInterface, resolver *config.Loader,
	historyRepo database.HistoryRepository) *Handler {
	return &Handler{
		processor:   processor,
		resolver:    resolver,
		historyRepo: historyRepo,
	}
}

func (h *Handler) GetCalendar(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	cal, err := h.processor.Run(c.Request.Context(), name, true)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			slog.Warn("Calendar not cached", "configuration", name, "error", err)
			c.String(http.StatusTooEarly, "Calendar not cached")
			return
		}
		if config.IsConfigError(err) {
			slog.Error("Configuration error", "configuration", name, "error", err)
			c.String(http.StatusUnprocessableEntity, "Configuration error")
			return
		}
		slog.Error("Calendar processing failed", "configuration", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	data := ical.Encode(cal)

	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=calendar.ics")
	c.Header("X-Calendar-Events", strconv.Itoa(len(cal.Events)))

	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if names, err := h.resolver.List(); err == nil {
		health["configurations"] = len(names)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.historyRepo.GetStats(20)
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
