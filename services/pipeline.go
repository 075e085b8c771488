package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yeremiapane/cafe-tables/models"
)

// TableFilter criteria are optional and combined with AND.
type TableFilter struct {
	Status      *models.TableStatus
	Capacity    *int
	TableNumber *int
	Search      string
}

func (f TableFilter) Match(t models.Table) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Capacity != nil && t.Capacity < *f.Capacity {
		return false
	}
	if f.TableNumber != nil && t.Number != *f.TableNumber {
		return false
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		if !strings.Contains(strconv.Itoa(t.Number), search) {
			return false
		}
	}
	return true
}

type SortKey string

const (
	SortByNumber   SortKey = "number"
	SortByCapacity SortKey = "capacity"
	SortByStatus   SortKey = "status"
)

func ParseSortKey(raw string) (SortKey, bool) {
	switch SortKey(raw) {
	case SortByNumber, SortByCapacity, SortByStatus:
		return SortKey(raw), true
	}
	return "", false
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func ParseSortDirection(raw string) (SortDirection, bool) {
	switch SortDirection(raw) {
	case SortAsc, SortDesc:
		return SortDirection(raw), true
	}
	return "", false
}

// SortState is a single active sort key with a direction.
type SortState struct {
	Key       SortKey
	Direction SortDirection
}

func DefaultSort() SortState {
	return SortState{Key: SortByNumber, Direction: SortAsc}
}

// Select toggles the direction when key is already active and otherwise
// switches to key ascending.
func (s SortState) Select(key SortKey) SortState {
	if s.Key == key {
		if s.Direction == SortAsc {
			return SortState{Key: key, Direction: SortDesc}
		}
		return SortState{Key: key, Direction: SortAsc}
	}
	return SortState{Key: key, Direction: SortAsc}
}

func (s SortState) less(a, b models.Table) bool {
	switch s.Key {
	case SortByCapacity:
		return a.Capacity < b.Capacity
	case SortByStatus:
		return a.Status < b.Status
	default:
		return a.Number < b.Number
	}
}

// Page is 1-based. A non-positive PageSize disables pagination.
type Page struct {
	Page     int
	PageSize int
}

type TableView struct {
	Items      []models.Table `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// FilterSortPaginate never modifies its input. Ties keep their input order in
// both directions; pages past the end are empty.
func FilterSortPaginate(tables []models.Table, filter TableFilter, sortState SortState, page Page) TableView {
	filtered := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if filter.Match(t) {
			filtered = append(filtered, t)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if sortState.Direction == SortDesc {
			return sortState.less(filtered[j], filtered[i])
		}
		return sortState.less(filtered[i], filtered[j])
	})

	view := TableView{
		Total:    len(filtered),
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	if page.PageSize <= 0 {
		view.Items = filtered
		if view.Total > 0 {
			view.TotalPages = 1
		}
		return view
	}

	view.TotalPages = (view.Total + page.PageSize - 1) / page.PageSize
	start := (page.Page - 1) * page.PageSize
	if page.Page < 1 || start >= view.Total {
		view.Items = []models.Table{}
		return view
	}
	end := start + page.PageSize
	if end > view.Total {
		end = view.Total
	}
	view.Items = filtered[start:end]
	return view
}
