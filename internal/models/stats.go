package models

import "time"

// StatsSnapshot is a point-in-time view of the directory, taken by the
// background snapshotter and served by the stats endpoint.
type StatsSnapshot struct {
	TotalUsers    int       `json:"totalUsers"`
	NewToday      int       `json:"newToday"`
	UploadBytes   int64     `json:"uploadBytes"`
	DiskFreeBytes uint64    `json:"diskFreeBytes"`
	TakenAt       time.Time `json:"takenAt"`
}
