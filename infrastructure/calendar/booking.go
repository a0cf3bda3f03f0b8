// Package calendar books tours and meeting rooms on the branch Google
// Calendars.
package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type Booker struct {
	service *gcal.Service
}

func NewBooker(ctx context.Context, credentialsFile string) (*Booker, error) {
	service, err := gcal.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init calendar service: %w", err)
	}
	return &Booker{service: service}, nil
}

// Booking is a confirmed calendar slot.
type Booking struct {
	EventID  string
	HTMLLink string
	Start    time.Time
	End      time.Time
}

// BookingRequest describes a tour or room reservation.
type BookingRequest struct {
	CalendarID  string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// Book inserts the event on the branch calendar.
func (b *Booker) Book(ctx context.Context, req BookingRequest) (*Booking, error) {
	if !req.End.After(req.Start) {
		return nil, fmt.Errorf("booking end %s must be after start %s", req.End, req.Start)
	}

	event := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &gcal.EventDateTime{DateTime: req.Start.Format(time.RFC3339), TimeZone: "Asia/Taipei"},
		End:         &gcal.EventDateTime{DateTime: req.End.Format(time.RFC3339), TimeZone: "Asia/Taipei"},
	}
	for _, email := range req.Attendees {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
	}

	created, err := b.service.Events.Insert(req.CalendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("insert calendar event: %w", err)
	}

	return &Booking{
		EventID:  created.Id,
		HTMLLink: created.HtmlLink,
		Start:    req.Start,
		End:      req.End,
	}, nil
}

// Cancel removes a previously booked event.
func (b *Booker) Cancel(ctx context.Context, calendarID, eventID string) error {
	if err := b.service.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete calendar event %s: %w", eventID, err)
	}
	return nil
}
