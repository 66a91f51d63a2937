package models

import "time"

// Location is a place managed by a user. It belongs to the manager's company.
type Location struct {
	LocationID int64
	ManagerID  int64
	Name       string
	Address    string
	CreatedAt  time.Time

	// Manager is populated on reads.
	Manager *User
}
