package model

import (
	"strings"
	"time"
)

// SlotGuard is written by every admission for a slot. Concurrent admissions
// touching the same guard inside transactions conflict, so only one of them
// can commit against a given slot count.
type SlotGuard struct {
	ID          string    `bson:"_id" json:"id"`
	ServiceName string    `bson:"service_name" json:"service_name"`
	Date        time.Time `bson:"date" json:"date"`
	TimeSlot    string    `bson:"time_slot" json:"time_slot"`
	Version     int64     `bson:"version" json:"version"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func SlotGuardID(serviceName string, day time.Time, timeSlot string) string {
	return strings.Join([]string{serviceName, day.UTC().Format(time.RFC3339), timeSlot}, "|")
}
