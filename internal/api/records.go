package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

// bindRecord decodes a JSON body into a new record. Keys may use either
// field spelling; unknown and read-only fields are rejected.
func bindRecord[T any](c *gin.Context, fields model.Fields) (T, bool) {
	var zero T
	var patch model.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return zero, false
	}
	v, err := model.Apply(zero, fields, patch)
	if err != nil {
		abortWithError(c, err)
		return zero, false
	}
	return v, true
}

func filterFrom(c *gin.Context) (inventory.Filter, error) {
	f := inventory.Filter{
		Query:  c.Query("q"),
		Status: c.Query("status"),
		Type:   c.Query("type"),
		SiteID: c.Query("siteId"),
		Sort:   inventory.SortKey(c.Query("sort")),
	}
	switch f.Sort {
	case "", inventory.SortByName, inventory.SortByIP:
	default:
		return f, &inventory.ValidationError{Field: "sort", Reason: "must be name or ip"}
	}
	if v := c.Query("unassigned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, &inventory.ValidationError{Field: "unassigned", Reason: "must be a boolean"}
		}
		f.Unassigned = b
	}
	return f, nil
}

func (s *Server) listRecords(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := filterFrom(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		records, err := s.svc.List(c.Request.Context(), kind)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, inventory.FilterRecords(records, f))
	}
}

func (s *Server) createRecord(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := SessionFrom(c).UserID

		var (
			created any
			err     error
		)
		switch kind {
		case model.KindEquipment:
			v, ok := bindRecord[model.Equipment](c, model.EquipmentFields)
			if !ok {
				return
			}
			created, err = s.svc.CreateEquipment(ctx, v, user)
		case model.KindConnection:
			v, ok := bindRecord[model.NetworkConnection](c, model.ConnectionFields)
			if !ok {
				return
			}
			created, err = s.svc.CreateConnection(ctx, v, user)
		case model.KindIPRange:
			v, ok := bindRecord[model.IPRange](c, model.IPRangeFields)
			if !ok {
				return
			}
			created, err = s.svc.CreateIPRange(ctx, v, user)
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func (s *Server) getRecord(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := s.svc.Get(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Server) updateRecord(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch model.Patch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		rec, err := s.svc.Update(c.Request.Context(), kind, c.Param("id"), patch, SessionFrom(c).UserID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Server) deleteRecord(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.svc.Delete(c.Request.Context(), kind, c.Param("id"), SessionFrom(c).UserID); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type assignRequest struct {
	SiteID string `json:"siteId" binding:"required"`
}

func (s *Server) assign(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req assignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		rec, err := s.svc.Assign(c.Request.Context(), kind, c.Param("id"), req.SiteID, SessionFrom(c).UserID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Server) unassign(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := s.svc.Unassign(c.Request.Context(), kind, c.Param("id"), SessionFrom(c).UserID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Server) unassigned(c *gin.Context) {
	kind, err := model.ParseKind(c.Param("kind"))
	if err != nil || !kind.Dependent() {
		abortWithError(c, &inventory.ValidationError{Field: "kind", Reason: "must be equipment, connections or ip-ranges"})
		return
	}
	items, err := s.svc.FindUnassigned(c.Request.Context(), kind)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) dashboard(c *gin.Context) {
	d, err := s.svc.Dashboard(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) history(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			abortWithError(c, &inventory.ValidationError{Field: "limit", Reason: "must be a non-negative integer"})
			return
		}
		limit = n
	}
	ops, err := s.svc.History(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ops)
}
