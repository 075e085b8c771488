package controllers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/models"
	"github.com/yeremiapane/cafe-tables/services"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// TableQuery is the list query accepted by GET /tables. Select applies a
// header click on top of Sort/Direction.
type TableQuery struct {
	Status      string `form:"status"`
	Capacity    *int   `form:"capacity" binding:"omitempty,min=1"`
	TableNumber *int   `form:"table_number" binding:"omitempty,min=1"`
	Search      string `form:"search"`
	Sort        string `form:"sort"`
	Direction   string `form:"direction"`
	Select      string `form:"select"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1"`
}

var allowedQueryKeys = map[string]bool{
	"status": true, "capacity": true, "table_number": true, "search": true,
	"sort": true, "direction": true, "select": true, "page": true, "page_size": true,
}

// bindTableQuery rejects unknown or misspelled query keys before binding.
func bindTableQuery(c *gin.Context) (TableQuery, error) {
	var unknown []string
	for key := range c.Request.URL.Query() {
		if !allowedQueryKeys[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return TableQuery{}, &models.ValidationError{Field: "query", Reason: "unknown parameter(s): " + strings.Join(unknown, ", ")}
	}

	var q TableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return TableQuery{}, &models.ValidationError{Field: "query", Reason: err.Error()}
	}
	return q, nil
}

func (q TableQuery) Filter() (services.TableFilter, error) {
	f := services.TableFilter{
		Capacity:    q.Capacity,
		TableNumber: q.TableNumber,
		Search:      q.Search,
	}
	if q.Status != "" {
		status, ok := models.ParseTableStatus(q.Status)
		if !ok {
			return f, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", q.Status)}
		}
		f.Status = &status
	}
	return f, nil
}

func (q TableQuery) SortState() (services.SortState, error) {
	s := services.DefaultSort()
	if q.Sort != "" {
		key, ok := services.ParseSortKey(q.Sort)
		if !ok {
			return s, &models.ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort key %q", q.Sort)}
		}
		s.Key = key
	}
	if q.Direction != "" {
		dir, ok := services.ParseSortDirection(q.Direction)
		if !ok {
			return s, &models.ValidationError{Field: "direction", Reason: "must be asc or desc"}
		}
		s.Direction = dir
	}
	if q.Select != "" {
		key, ok := services.ParseSortKey(q.Select)
		if !ok {
			return s, &models.ValidationError{Field: "select", Reason: fmt.Sprintf("unknown sort key %q", q.Select)}
		}
		s = s.Select(key)
	}
	return s, nil
}

// Paging applies the page defaults and caps the page size.
func (q TableQuery) Paging() services.Page {
	p := services.Page{Page: q.Page, PageSize: q.PageSize}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func parseUint(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(v), nil
}
