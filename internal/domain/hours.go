package domain

import "time"

const (
	WorkdayEndedText = "The workday has ended. Please note that requests will be processed during the next workday."
	WeekendText      = "Sorry! The bot does not process requests on weekends. 👌"
)

// ServiceHours is the daily window in which the shuttle takes requests.
type ServiceHours struct {
	Start    TimeOfDay
	End      TimeOfDay
	Weekends bool
	Location *time.Location
}

type HoursState int

const (
	HoursOpen HoursState = iota
	HoursClosed
	HoursWeekend
)

func (h ServiceHours) State(now time.Time) HoursState {
	if h.Location != nil {
		now = now.In(h.Location)
	}
	if !h.Weekends {
		if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return HoursWeekend
		}
	}
	tod := TimeOfDayFrom(now, nil)
	if tod < h.Start || tod >= h.End {
		return HoursClosed
	}
	return HoursOpen
}

// Message is the reply for a closed state, empty when open.
func (s HoursState) Message() string {
	switch s {
	case HoursClosed:
		return WorkdayEndedText
	case HoursWeekend:
		return WeekendText
	}
	return ""
}
