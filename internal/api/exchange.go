package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"netinv/internal/inventory"
	"netinv/internal/sheet"
)

func (s *Server) exportWorkbook(c *gin.Context) {
	batch, err := s.svc.Export(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := sheet.Write(&buf, batch); err != nil {
		abortWithError(c, fmt.Errorf("writing workbook: %w", err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	c.Data(http.StatusOK, sheet.ContentType, buf.Bytes())
}

type importResponse struct {
	Imported []inventory.KindCount `json:"imported"`
}

// importWorkbook loads the multipart "file" field. The whole workbook is
// imported in one transaction.
func (s *Server) importWorkbook(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	batch, err := sheet.Read(f)
	if err != nil {
		if errors.Is(err, inventory.ErrConstraintViolation) {
			abortWithError(c, err)
		} else {
			badRequest(c, err)
		}
		return
	}
	counts, err := s.svc.Import(c.Request.Context(), batch, SessionFrom(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, importResponse{Imported: counts})
}
