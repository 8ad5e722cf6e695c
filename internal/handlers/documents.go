package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

// multipartOverhead leaves room for form fields and boundaries around the file.
const multipartOverhead = 1 << 20

// DocumentHandler handles supporting-document uploads and downloads.
type DocumentHandler struct {
	Documents *services.DocumentService
	Log       *zap.Logger
}

func NewDocumentHandler(documents *services.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{Documents: documents, Log: log}
}

// Upload handles a multipart form with a "kind" field and a "file" part.
// The file is stored in the database next to its metadata.
func (h *DocumentHandler) Upload(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	limit := h.Documents.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	file, header, err := c.Request.FormFile("file") // "file" is the name of the form field
	if err != nil {
		utils.BadRequest(c, "a file is required in the \"file\" form field")
		return
	}
	defer file.Close()

	// Read one byte past the limit so oversize files are detected, not truncated.
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		utils.BadRequest(c, "could not read uploaded file")
		return
	}

	info, err := h.Documents.Upload(c.Request.Context(), cl,
		c.PostForm("kind"), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Created(c, info)
}

// Get serves the stored file to an admin or its owner.
func (h *DocumentHandler) Get(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	doc, err := h.Documents.Get(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName})
	if disposition == "" {
		disposition = fmt.Sprintf("attachment; filename=%q", doc.ID)
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
