package model

const (
	ServiceGrooming      = "grooming"
	ServiceVaccination   = "vaccination"
	ServiceHealthCheckup = "health_checkup"
	ServiceDentalCare    = "dental_care"
	ServiceConsultation  = "consultation"
)

type SlotSegment string

const (
	SegmentMorning   SlotSegment = "morning"
	SegmentAfternoon SlotSegment = "afternoon"
)

type TimeSlot struct {
	Label   string      `json:"time_slot"`
	Segment SlotSegment `json:"segment"`
}

var services = []string{
	ServiceGrooming,
	ServiceVaccination,
	ServiceHealthCheckup,
	ServiceDentalCare,
	ServiceConsultation,
}

var timeSlots = []TimeSlot{
	{Label: "09:00 - 09:30", Segment: SegmentMorning},
	{Label: "09:30 - 10:00", Segment: SegmentMorning},
	{Label: "10:00 - 10:30", Segment: SegmentMorning},
	{Label: "10:30 - 11:00", Segment: SegmentMorning},
	{Label: "11:00 - 11:30", Segment: SegmentMorning},
	{Label: "11:30 - 12:00", Segment: SegmentMorning},
	{Label: "13:00 - 13:30", Segment: SegmentAfternoon},
	{Label: "13:30 - 14:00", Segment: SegmentAfternoon},
	{Label: "14:00 - 14:30", Segment: SegmentAfternoon},
	{Label: "14:30 - 15:00", Segment: SegmentAfternoon},
	{Label: "15:00 - 15:30", Segment: SegmentAfternoon},
	{Label: "15:30 - 16:00", Segment: SegmentAfternoon},
	{Label: "16:00 - 16:30", Segment: SegmentAfternoon},
	{Label: "16:30 - 17:00", Segment: SegmentAfternoon},
}

// Services returns a copy of the bookable service names.
func Services() []string {
	out := make([]string, len(services))
	copy(out, services)
	return out
}

// TimeSlots returns a copy of the fixed daily slots in display order.
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

func IsValidService(name string) bool {
	for _, s := range services {
		if s == name {
			return true
		}
	}
	return false
}

func IsValidTimeSlot(label string) bool {
	for _, slot := range timeSlots {
		if slot.Label == label {
			return true
		}
	}
	return false
}

type Catalog struct {
	Services []string   `json:"services"`
	Slots    []TimeSlot `json:"slots"`
	Capacity int        `json:"capacity_per_slot"`
}
