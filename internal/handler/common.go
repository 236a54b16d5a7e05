package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

// handleServiceError переводит сентинельные ошибки сервисов в HTTP-статусы
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("[Handler] ERROR: внутренняя ошибка: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUserID достает ID аутентифицированного пользователя из контекста
func currentUserID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}

// isAdmin возвращает true, если запрос сделан администратором
func isAdmin(c *gin.Context) bool {
	v, exists := c.Get("is_admin")
	return exists && v.(bool)
}

// parseClass парсит номер класса из query-параметра
func parseClass(raw string) (int, error) {
	return strconv.Atoi(raw)
}

// parsePagination читает query-параметры page и page_size
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
