package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

func (s *Server) listSites(c *gin.Context) {
	sites, err := s.svc.ListSites(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventory.FilterSites(sites, c.Query("q")))
}

func (s *Server) createSite(c *gin.Context) {
	site, ok := bindRecord[model.Site](c, model.SiteFields)
	if !ok {
		return
	}
	created, err := s.svc.CreateSite(c.Request.Context(), site, SessionFrom(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getSite(c *gin.Context) {
	site, err := s.svc.GetSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

func (s *Server) updateSite(c *gin.Context) {
	var patch model.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	site, err := s.svc.UpdateSite(c.Request.Context(), c.Param("id"), patch, SessionFrom(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

// deleteSite runs the cascade delete in the configured mode.
func (s *Server) deleteSite(c *gin.Context) {
	res, err := s.svc.CascadeDelete(c.Request.Context(), c.Param("id"), SessionFrom(c).UserID)
	if !errors.Is(err, inventory.ErrNotFound) {
		s.metrics.CascadesTotal.WithLabelValues(string(s.svc.CascadeMode()), inventory.StatusFor(err)).Inc()
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) siteSummary(c *gin.Context) {
	sum, err := s.svc.SiteSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) listBySite(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		siteID := c.Param("id")
		if _, err := s.svc.GetSite(ctx, siteID); err != nil {
			abortWithError(c, err)
			return
		}
		records, err := s.svc.ListBySite(ctx, kind, siteID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func (s *Server) uploadFloorplan(c *gin.Context) {
	s.withUpload(c, s.svc.UploadFloorplan, http.StatusOK)
}

func (s *Server) addRackPhoto(c *gin.Context) {
	s.withUpload(c, s.svc.AddRackPhoto, http.StatusCreated)
}

func (s *Server) removeRackPhoto(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		abortWithError(c, &inventory.ValidationError{Field: "url", Reason: "is required"})
		return
	}
	site, err := s.svc.RemoveRackPhoto(c.Request.Context(), c.Param("id"), url, SessionFrom(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

type uploadFunc func(ctx context.Context, siteID string, up inventory.ObjectUpload, userID string) (model.Site, error)

// withUpload passes the multipart "file" field of the request to fn.
func (s *Server) withUpload(c *gin.Context, fn uploadFunc, status int) {
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

	site, err := fn(c.Request.Context(), c.Param("id"), inventory.ObjectUpload{
		Name:        fh.Filename,
		Body:        f,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}, SessionFrom(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(status, site)
}
