package domain

import "time"

// Person is a pre-existing account holder. Persons are never modified or deleted by the ledger.
type Person struct {
	ID        PersonID
	Name      string
	Document  string
	BirthDate time.Time
	CreatedAt time.Time
}
