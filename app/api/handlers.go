package api

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feed-digest/app/digest"
	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/lysyi3m/feed-digest/app/tasks"
)

func NewHandler(state *tasks.State, scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		state:     state,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
	}

	if result, ok := h.state.Latest(); ok {
		health["last_run_id"] = result.RunID
		health["last_run_at"] = result.GeneratedAt.Format(time.RFC3339)
		health["posts"] = len(result.Posts)
	}

	health["categories"] = len(h.state.Pipeline().Rules().Categories.Categories)

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetPosts(c *gin.Context) {
	result, ok := h.latest(c)
	if !ok {
		return
	}

	if c.Query("format") == "tree" {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Status(http.StatusOK)
		if err := digest.RenderTree(c.Writer, digest.BuildTree(*result)); err != nil {
			slog.Error("Tree rendering error", "run_id", result.RunID, "error", err)
		}
		return
	}

	c.Header("X-Run-ID", result.RunID)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetCategoryPosts(c *gin.Context) {
	category := c.Param("category")

	if !slices.Contains(h.state.Pipeline().Rules().Categories.Names(), category) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown category"})
		return
	}

	result, ok := h.latest(c)
	if !ok {
		return
	}

	posts := result.Groups[category]
	if posts == nil {
		posts = []feed.Post{}
	}

	c.Header("X-Run-ID", result.RunID)
	c.Header("X-Category-Items", strconv.Itoa(len(posts)))
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"run_id":   result.RunID,
		"posts":    posts,
	})
}

func (h *Handler) APIRefresh(c *gin.Context) {
	task := h.scheduler.NewRefreshTask(tasks.TriggerAPI)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing refresh task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task":    gin.H{"id": task.ID, "type": task.Type, "trigger": task.Trigger},
	})
}

func (h *Handler) APIReloadRules(c *gin.Context) {
	task := h.scheduler.NewReloadRulesTask(tasks.TriggerAPI)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing reload task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue reload task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task":    gin.H{"id": task.ID, "type": task.Type, "trigger": task.Trigger},
	})
}

func (h *Handler) latest(c *gin.Context) (*digest.Result, bool) {
	result, ok := h.state.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No refresh has completed yet"})
		return nil, false
	}
	return result, true
}
