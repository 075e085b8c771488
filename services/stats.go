package services

import "github.com/yeremiapane/cafe-tables/models"

type TableStats struct {
	Available     int `json:"available"`
	Reserved      int `json:"reserved"`
	Occupied      int `json:"occupied"`
	Total         int `json:"total"`
	TotalSeats    int `json:"total_seats"`
	OccupiedSeats int `json:"occupied_seats"`
}

func ComputeStats(tables []models.Table) TableStats {
	var s TableStats
	for _, t := range tables {
		s.Total++
		s.TotalSeats += t.Capacity
		switch t.Status {
		case models.StatusAvailable:
			s.Available++
		case models.StatusReserved:
			s.Reserved++
		case models.StatusOccupied:
			s.Occupied++
			s.OccupiedSeats += t.Capacity
		}
	}
	return s
}
