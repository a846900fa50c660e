package handler

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/export"
	"github.com/habitlog/internal/locale"
)

const (
	maxImportBytes = 10 << 20
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportJSON 下载完整文档
func (a *API) ExportJSON(c *gin.Context) {
	data, err := export.EncodeJSON(a.tracker.Document())
	if err != nil {
		log.Printf("[export] encode json failed: %v", err)
		respondError(c, http.StatusInternalServerError, locale.MsgExportFailed)
		return
	}

	a.attachment(c, "json")
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ExportCSV 以表格形式下载全部打卡记录
func (a *API) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, a.tracker.Document()); err != nil {
		log.Printf("[export] write csv failed: %v", err)
		respondError(c, http.StatusInternalServerError, locale.MsgExportFailed)
		return
	}

	a.attachment(c, "csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX 以 Excel 工作簿下载全部打卡记录
func (a *API) ExportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, a.tracker.Document()); err != nil {
		log.Printf("[export] write xlsx failed: %v", err)
		respondError(c, http.StatusInternalServerError, locale.MsgExportFailed)
		return
	}

	a.attachment(c, "xlsx")
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// Import 用上传的 JSON 文档替换当前文档，支持请求体或 multipart 字段 file
func (a *API) Import(c *gin.Context) {
	payload, err := readImportPayload(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, locale.MsgImportMissing)
		return
	}

	meta, err := a.tracker.Import(c.Request.Context(), payload)
	if err != nil && !isPersistenceOnly(err) {
		log.Printf("[import] rejected: %v", err)
	}
	respondMutation(c, gin.H{"document": meta}, err)
}

func (a *API) attachment(c *gin.Context, ext string) {
	filename := fmt.Sprintf("habit-tracker-%s.%s", a.now().Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

func readImportPayload(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxImportBytes))
	}

	return io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
}
