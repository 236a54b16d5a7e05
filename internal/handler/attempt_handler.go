package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/rajanagg1105/testmaxx-sub000/internal/handler/dto"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service"
)

// AttemptHandler обрабатывает запросы к истории попыток
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// MyAttempts возвращает историю попыток текущего ученика
// GET /api/attempts
func (h *AttemptHandler) MyAttempts(c *gin.Context) {
	page, pageSize := parsePagination(c)

	attempts, total, err := h.attemptService.GetUserAttempts(currentUserID(c), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedAttemptResponse(attempts, total, page, pageSize))
}

// GetAttempt возвращает попытку с повопросным разбором. Ученик видит
// только свои попытки, админ - любые.
// GET /api/attempts/:id
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	detail, err := h.attemptService.GetAttemptDetail(attemptID, currentUserID(c), isAdmin(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptDetailResponse(detail))
}

// TestAttempts возвращает попытки по конкретному тесту (для админа)
// GET /api/admin/tests/:id/attempts
func (h *AttemptHandler) TestAttempts(c *gin.Context) {
	testID := c.MustGet("testID").(uint)
	page, pageSize := parsePagination(c)

	attempts, total, err := h.attemptService.GetTestAttempts(testID, page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedAttemptResponse(attempts, total, page, pageSize))
}

// ExportAttempts выгружает все попытки теста в CSV или XLSX
// GET /api/admin/tests/:id/attempts/export?format=csv|xlsx
func (h *AttemptHandler) ExportAttempts(c *gin.Context) {
	testID := c.MustGet("testID").(uint)
	format := c.DefaultQuery("format", "csv")

	test, rows, err := h.attemptService.ExportRows(testID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("test_%d_attempts_%s", test.ID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

// exportCSV выгружает попытки в CSV с корректным экранированием спецсимволов
func (h *AttemptHandler) exportCSV(c *gin.Context, rows []service.AttemptExportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// encoding/csv сам экранирует запятые и кавычки
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Попытка", "Ученик", "Email", "Класс", "Очки", "Всего вопросов", "Процент", "Время (сек)", "Сдано"})

	for _, r := range rows {
		writer.Write([]string{
			strconv.FormatUint(uint64(r.AttemptID), 10),
			sanitizeForExcel(r.Username),
			sanitizeForExcel(r.Email),
			strconv.Itoa(r.Class),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.TotalQuestions),
			strconv.Itoa(r.Percentage),
			strconv.Itoa(r.TimeSpentSec),
			r.CompletedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// exportXLSX выгружает попытки в Excel через StreamWriter
func (h *AttemptHandler) exportXLSX(c *gin.Context, rows []service.AttemptExportRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Попытки"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AttemptHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Попытка", "Ученик", "Email", "Класс", "Очки", "Всего вопросов", "Процент", "Время (сек)", "Сдано"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2 // первая строка занята заголовками
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{
			r.AttemptID,
			sanitizeForExcel(r.Username),
			sanitizeForExcel(r.Email),
			r.Class,
			r.Score,
			r.TotalQuestions,
			r.Percentage,
			r.TimeSpentSec,
			r.CompletedAt.Format("2006-01-02 15:04:05"),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AttemptHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AttemptHandler] Ошибка при Flush: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
