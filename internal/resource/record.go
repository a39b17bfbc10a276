package resource

import "time"

// Record is the envelope every proxied record embeds.
type Record struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Base gives the handler access to the envelope of an embedding struct.
func (r *Record) Base() *Record {
	return r
}

// Based is implemented by pointers to structs that embed Record.
type Based interface {
	Base() *Record
}

func baseOf[T any](v *T) *Record {
	b, ok := any(v).(Based)
	if !ok {
		panic("resource: record type does not embed resource.Record")
	}

	return b.Base()
}
