package records

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"readhub/internal/auth"
	"readhub/internal/feed"
	"readhub/internal/history"
	"readhub/internal/reconcile"
	"readhub/internal/sync"
	"readhub/pkg/models"
)

type Handler struct {
	Repo    *Repo
	History *history.Repo
	Hub     *sync.Hub
	Feed    *feed.Hub
}

func NewHandler(repo *Repo, hist *history.Repo, hub *sync.Hub, fd *feed.Hub) *Handler {
	return &Handler{Repo: repo, History: hist, Hub: hub, Feed: fd}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/records", h.list)
	rg.POST("/records", h.create)
	rg.GET("/records/:id", h.get)
	rg.PUT("/records/:id", h.update)
	rg.DELETE("/records/:id", h.delete)

	rg.PUT("/records/:id/status", h.setStatus)
	rg.POST("/records/:id/progress", h.addProgress)
	rg.PUT("/records/:id/dates", h.editDates)
	rg.GET("/records/:id/snapshot", h.snapshot)
}

type createReq struct {
	Kind     string   `json:"kind"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Status   string   `json:"status"`
	Priority *int     `json:"priority"`
	Tags     []string `json:"tags"`

	SourceURL *string `json:"source_url"`

	ProgressPercent *int   `json:"progress_percent"`
	ProgressMode    string `json:"progress_mode"`

	PageCount   *int `json:"page_count"`
	CurrentPage *int `json:"current_page"`

	AvailableUnits  *int  `json:"available_units"`
	TotalUnits      *int  `json:"total_units"`
	LegacyUnitCount *int  `json:"legacy_unit_count"`
	Complete        *bool `json:"complete"`
	CurrentUnit     *int  `json:"current_unit"`

	CurrentSeconds *int `json:"current_seconds"`
	TotalSeconds   *int `json:"total_seconds"`

	StartedAt   *time.Time `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
	AbandonedAt *time.Time `json:"abandoned_at"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	kind := models.Kind(strings.TrimSpace(req.Kind))
	if !models.ValidKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be book or serial"})
		return
	}
	status := models.StatusQueued
	if s := strings.TrimSpace(req.Status); s != "" {
		status = models.Status(s)
		if !models.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	priority := 3
	if req.Priority != nil {
		priority = *req.Priority
		if priority < 1 || priority > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be 1-5"})
			return
		}
	}
	percent := 0
	if req.ProgressPercent != nil {
		percent = *req.ProgressPercent
		if percent < 0 || percent > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "progress_percent must be 0-100"})
			return
		}
	}
	for _, p := range []*int{
		req.PageCount, req.CurrentPage,
		req.AvailableUnits, req.TotalUnits, req.LegacyUnitCount, req.CurrentUnit,
		req.CurrentSeconds, req.TotalSeconds,
	} {
		if p != nil && *p < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "counts must be >= 0"})
			return
		}
	}

	now := time.Now().UTC()
	ts := reconcile.OnCreate(status, models.LifecycleDates{
		StartedAt:   req.StartedAt,
		FinishedAt:  req.FinishedAt,
		AbandonedAt: req.AbandonedAt,
	}, now)

	if req.Tags == nil {
		req.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(req.Tags)

	row := models.RecordRow{
		ID:       uuid.NewString(),
		UserID:   claims.UserID,
		Kind:     string(kind),
		Title:    req.Title,
		Author:   strings.TrimSpace(req.Author),
		Status:   string(status),
		Priority: priority,
		TagsJSON: string(tagsJSON),

		SourceURL: req.SourceURL,

		CreatedAt:   ts.CreatedAt,
		UpdatedAt:   now,
		StartedAt:   ts.StartedAt,
		FinishedAt:  ts.FinishedAt,
		AbandonedAt: ts.AbandonedAt,

		ProgressPercent: percent,

		PageCount:   req.PageCount,
		CurrentPage: req.CurrentPage,

		AvailableUnits:  req.AvailableUnits,
		TotalUnits:      req.TotalUnits,
		LegacyUnitCount: req.LegacyUnitCount,
		Complete:        req.Complete,
		CurrentUnit:     req.CurrentUnit,

		CurrentSeconds: req.CurrentSeconds,
		TotalSeconds:   req.TotalSeconds,
	}
	if m := strings.TrimSpace(req.ProgressMode); m != "" {
		row.ProgressMode = &m
	}

	// normalize the caller's chapter fields the same way stored rows are
	rec := reconcile.FromStorage(row)
	if rec.Status == models.StatusDone {
		rec = reconcile.ApplyUpdate(rec, models.PercentUpdate{Percent: 100})
	}

	if err := h.Repo.Insert(c.Request.Context(), reconcile.ToStorage(rec)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	h.broadcast(sync.EventRecordUpdate, rec)
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := ListQuery{
		Status: strings.TrimSpace(c.Query("status")),
		Kind:   strings.TrimSpace(c.Query("kind")),
		Tag:    strings.TrimSpace(c.Query("tag")),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if q.Status != "" && !models.ValidStatus(models.Status(q.Status)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if q.Kind != "" && !models.ValidKind(models.Kind(q.Kind)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
		return
	}

	rows, total, err := h.Repo.List(c.Request.Context(), claims.UserID, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	items := make([]models.ReadableRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, reconcile.FromStorage(row))
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) get(c *gin.Context) {
	rec, ok := h.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

type updateReq struct {
	Title     *string   `json:"title"`
	Author    *string   `json:"author"`
	Priority  *int      `json:"priority"`
	Tags      *[]string `json:"tags"`
	SourceURL *string   `json:"source_url"`

	PageCount *int `json:"page_count"`

	AvailableUnits *int  `json:"available_units"`
	TotalUnits     *int  `json:"total_units"`
	Complete       *bool `json:"complete"`

	TotalSeconds *int `json:"total_seconds"`
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	row, err := h.Repo.GetByID(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		row.Title = t
	}
	if req.Author != nil {
		row.Author = strings.TrimSpace(*req.Author)
	}
	if req.Priority != nil {
		if *req.Priority < 1 || *req.Priority > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be 1-5"})
			return
		}
		row.Priority = *req.Priority
	}
	if req.Tags != nil {
		b, _ := json.Marshal(*req.Tags)
		row.TagsJSON = string(b)
	}
	if req.SourceURL != nil {
		row.SourceURL = req.SourceURL
	}
	for _, p := range []*int{req.PageCount, req.AvailableUnits, req.TotalUnits, req.TotalSeconds} {
		if p != nil && *p < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "counts must be >= 0"})
			return
		}
	}
	if req.PageCount != nil {
		row.PageCount = req.PageCount
	}
	if req.AvailableUnits != nil {
		row.AvailableUnits = req.AvailableUnits
	}
	if req.TotalUnits != nil {
		row.TotalUnits = req.TotalUnits
	}
	if req.Complete != nil {
		row.Complete = req.Complete
	}
	if req.TotalSeconds != nil {
		row.TotalSeconds = req.TotalSeconds
	}

	rec := reconcile.FromStorage(*row)
	rec.UpdatedAt = time.Now().UTC()

	if err := h.Repo.Update(c.Request.Context(), reconcile.ToStorage(rec)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	h.broadcast(sync.EventRecordUpdate, rec)
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id := c.Param("id")
	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(sync.RecordEvent{
			Type:     sync.EventRecordDelete,
			UserID:   claims.UserID,
			RecordID: id,
		})
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(c *gin.Context) {
	rec, ok := h.fetch(c)
	if !ok {
		return
	}

	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	newStatus := models.Status(strings.TrimSpace(req.Status))
	if !models.ValidStatus(newStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	rec = reconcile.OnStatusChange(rec, newStatus, time.Now().UTC())

	if err := h.Repo.Update(c.Request.Context(), reconcile.ToStorage(rec)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	h.broadcast(sync.EventRecordStatus, rec)
	c.JSON(http.StatusOK, rec)
}

type progressReq struct {
	Axis    string `json:"axis"`
	Percent *int   `json:"percent"`
	Value   *int   `json:"value"`
	Current *int   `json:"current"`
	Total   *int   `json:"total"`
}

func (h *Handler) addProgress(c *gin.Context) {
	rec, ok := h.fetch(c)
	if !ok {
		return
	}

	var req progressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var upd models.ProgressUpdate
	var value int
	switch models.Axis(strings.TrimSpace(req.Axis)) {
	case models.AxisPercent:
		if req.Percent == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "percent required"})
			return
		}
		upd = models.PercentUpdate{Percent: *req.Percent}
		value = *req.Percent
	case models.AxisUnit:
		if req.Value == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value required"})
			return
		}
		if *req.Value < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value must be >= 0"})
			return
		}
		upd = models.UnitUpdate{Value: *req.Value}
		value = *req.Value
	case models.AxisTime:
		if req.Current == nil || req.Total == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "current and total required"})
			return
		}
		if *req.Current < 0 || *req.Total < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seconds must be >= 0"})
			return
		}
		upd = models.TimeUpdate{Current: *req.Current, Total: *req.Total}
		value = *req.Current
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "axis must be percent, unit or time"})
		return
	}

	rec = reconcile.ApplyUpdate(rec, upd)
	rec.UpdatedAt = time.Now().UTC()

	if err := h.Repo.Update(c.Request.Context(), reconcile.ToStorage(rec)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.History != nil {
		entry := models.ProgressEntry{
			UserID:   rec.UserID,
			RecordID: rec.ID,
			Axis:     upd.Axis(),
			Value:    value,
			Percent:  rec.ProgressPercent,
			At:       rec.UpdatedAt,
		}
		if err := h.History.Add(c.Request.Context(), entry); err != nil {
			log.Printf("[records] history append failed: %v", err)
		}
	}

	h.broadcast(sync.EventRecordUpdate, rec)
	c.JSON(http.StatusOK, rec)
}

type datesReq struct {
	StartedAt   *time.Time `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
	AbandonedAt *time.Time `json:"abandoned_at"`
}

func (h *Handler) editDates(c *gin.Context) {
	rec, ok := h.fetch(c)
	if !ok {
		return
	}

	var req datesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	rec = reconcile.OnExplicitEdit(rec, models.LifecycleDates{
		StartedAt:   req.StartedAt,
		FinishedAt:  req.FinishedAt,
		AbandonedAt: req.AbandonedAt,
	})
	rec.UpdatedAt = time.Now().UTC()

	if err := h.Repo.Update(c.Request.Context(), reconcile.ToStorage(rec)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	h.broadcast(sync.EventRecordUpdate, rec)
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) snapshot(c *gin.Context) {
	rec, ok := h.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reconcile.Snapshot(rec))
}

// fetch loads the caller's record named in the path, writing the error
// response itself when something is wrong.
func (h *Handler) fetch(c *gin.Context) (models.ReadableRecord, bool) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.ReadableRecord{}, false
	}

	row, err := h.Repo.GetByID(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return models.ReadableRecord{}, false
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return models.ReadableRecord{}, false
	}
	return reconcile.FromStorage(*row), true
}

func (h *Handler) broadcast(eventType string, rec models.ReadableRecord) {
	if h.Hub != nil {
		h.Hub.Broadcast(sync.RecordEvent{
			Type:            eventType,
			UserID:          rec.UserID,
			RecordID:        rec.ID,
			Title:           rec.Title,
			Status:          string(rec.Status),
			ProgressPercent: rec.ProgressPercent,
			At:              rec.UpdatedAt,
		})
	}
	if h.Feed != nil {
		h.Feed.Publish(feed.Item{
			Type:     eventType,
			UserID:   rec.UserID,
			RecordID: rec.ID,
			Title:    rec.Title,
			At:       rec.UpdatedAt,
		})
	}
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
