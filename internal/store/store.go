package store

// Stores groups the store implementations used by the calendar service and the API.
type Stores struct {
	Companies CompanyStore
	Users     UserStore
	Locations LocationStore
	Events    EventStore
	Sessions  SessionStore
}
