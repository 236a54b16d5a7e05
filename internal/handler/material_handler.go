package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	"github.com/rajanagg1105/testmaxx-sub000/internal/handler/dto"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service"
)

// MaterialHandler обрабатывает запросы к учебным материалам и видеоурокам
type MaterialHandler struct {
	materialService *service.MaterialService
}

// NewMaterialHandler создает новый обработчик материалов
func NewMaterialHandler(materialService *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

func contentFiltersFromQuery(c *gin.Context) repository.ContentFilters {
	filters := repository.ContentFilters{Subject: c.Query("subject")}
	if raw := c.Query("class"); raw != "" {
		if parsed, err := parseClass(raw); err == nil {
			filters.Class = parsed
		}
	}
	return filters
}

// ListMaterials возвращает учебные материалы по фильтрам
// GET /api/materials?class=7&subject=Maths
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	page, pageSize := parsePagination(c)

	materials, total, err := h.materialService.ListMaterials(contentFiltersFromQuery(c), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedMaterialResponse(materials, total, page, pageSize))
}

// GetMaterial возвращает один материал
// GET /api/materials/:id
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	materialID := c.MustGet("materialID").(uint)

	material, err := h.materialService.GetMaterial(materialID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMaterialResponse(material))
}

// ListVideos возвращает видеоуроки по фильтрам
// GET /api/videos?class=7&subject=Science
func (h *MaterialHandler) ListVideos(c *gin.Context) {
	page, pageSize := parsePagination(c)

	videos, total, err := h.materialService.ListVideos(contentFiltersFromQuery(c), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedVideoResponse(videos, total, page, pageSize))
}

// GetVideo возвращает один видеоурок
// GET /api/videos/:id
func (h *MaterialHandler) GetVideo(c *gin.Context) {
	videoID := c.MustGet("videoID").(uint)

	video, err := h.materialService.GetVideo(videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewVideoResponse(video))
}

// --- Админские операции ---

// MaterialRequest представляет запрос на создание/обновление материала
type MaterialRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Class       int    `json:"class" binding:"required"`
	Subject     string `json:"subject" binding:"required,min=2,max=50"`
	FileURL     string `json:"file_url" binding:"required,url"`
	FileType    string `json:"file_type" binding:"omitempty,max=20"`
}

func (r *MaterialRequest) toEntity() *entity.StudyMaterial {
	return &entity.StudyMaterial{
		Title:       r.Title,
		Description: r.Description,
		Class:       r.Class,
		Subject:     r.Subject,
		FileURL:     r.FileURL,
		FileType:    r.FileType,
	}
}

// CreateMaterial создает учебный материал
// POST /api/admin/materials
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	material := req.toEntity()
	if err := h.materialService.CreateMaterial(material); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMaterialResponse(material))
}

// UpdateMaterial обновляет учебный материал
// PUT /api/admin/materials/:id
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	materialID := c.MustGet("materialID").(uint)

	var req MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	material := req.toEntity()
	material.ID = materialID
	if err := h.materialService.UpdateMaterial(material); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMaterialResponse(material))
}

// DeleteMaterial удаляет учебный материал
// DELETE /api/admin/materials/:id
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	materialID := c.MustGet("materialID").(uint)

	if err := h.materialService.DeleteMaterial(materialID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Material deleted"})
}

// VideoRequest представляет запрос на создание/обновление видеоурока
type VideoRequest struct {
	Title        string `json:"title" binding:"required,min=3,max=100"`
	Description  string `json:"description" binding:"omitempty,max=500"`
	Class        int    `json:"class" binding:"required"`
	Subject      string `json:"subject" binding:"required,min=2,max=50"`
	VideoURL     string `json:"video_url" binding:"required,url"`
	ThumbnailURL string `json:"thumbnail_url" binding:"omitempty,url"`
	DurationSec  int    `json:"duration_sec" binding:"omitempty,min=0"`
}

func (r *VideoRequest) toEntity() *entity.Video {
	return &entity.Video{
		Title:        r.Title,
		Description:  r.Description,
		Class:        r.Class,
		Subject:      r.Subject,
		VideoURL:     r.VideoURL,
		ThumbnailURL: r.ThumbnailURL,
		DurationSec:  r.DurationSec,
	}
}

// CreateVideo создает видеоурок
// POST /api/admin/videos
func (h *MaterialHandler) CreateVideo(c *gin.Context) {
	var req VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video := req.toEntity()
	if err := h.materialService.CreateVideo(video); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewVideoResponse(video))
}

// UpdateVideo обновляет видеоурок
// PUT /api/admin/videos/:id
func (h *MaterialHandler) UpdateVideo(c *gin.Context) {
	videoID := c.MustGet("videoID").(uint)

	var req VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video := req.toEntity()
	video.ID = videoID
	if err := h.materialService.UpdateVideo(video); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewVideoResponse(video))
}

// DeleteVideo удаляет видеоурок
// DELETE /api/admin/videos/:id
func (h *MaterialHandler) DeleteVideo(c *gin.Context) {
	videoID := c.MustGet("videoID").(uint)

	if err := h.materialService.DeleteVideo(videoID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
}
