package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"prenota/internal/availability"
	"prenota/internal/model"
)

const (
	SheetBookings = "Bookings"
	SheetSummary  = "Summary"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var bookingColumns = []string{
	"Date", "Time", "Until", "Name", "Contact", "Adults", "Children", "Party", "Status", "Tables", "Booking ID",
}

var summaryColumns = []string{
	"Date", "Bookings", "Confirmed guests", "Pending guests", "Declined guests",
}

// WriteBookings renders bookings into an xlsx workbook with one row per
// booking and a per-date summary sheet. Table ids are shown by their
// configured names when known.
func WriteBookings(out io.Writer, bookings []model.Booking, settings *model.Settings) error {
	w := newSheetWriter()
	defer func() { _ = w.close() }()

	if err := w.addSheet(SheetBookings); err != nil {
		return err
	}
	if err := w.writeHeader(bookingColumns); err != nil {
		return err
	}

	type totals struct {
		count     int
		confirmed int
		pending   int
		declined  int
	}
	perDate := make(map[string]*totals)

	for i := range bookings {
		b := &bookings[i]
		if err := w.writeRow([]any{
			b.Date,
			b.Time,
			until(b, settings),
			b.Name,
			b.Contact,
			b.Adults,
			b.Children,
			b.PartySize(),
			string(b.Status),
			tableNames(b.AssignedTableIDs, settings),
			b.ID,
		}); err != nil {
			return fmt.Errorf("write booking %s: %w", b.ID, err)
		}

		t, ok := perDate[b.Date]
		if !ok {
			t = &totals{}
			perDate[b.Date] = t
		}
		t.count++
		switch b.Status {
		case model.StatusConfirmed:
			t.confirmed += b.PartySize()
		case model.StatusPending:
			t.pending += b.PartySize()
		case model.StatusDeclined:
			t.declined += b.PartySize()
		}
	}

	if err := w.addSheet(SheetSummary); err != nil {
		return err
	}
	if err := w.writeHeader(summaryColumns); err != nil {
		return err
	}

	dates := make([]string, 0, len(perDate))
	for d := range perDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		t := perDate[d]
		if err := w.writeRow([]any{d, t.count, t.confirmed, t.pending, t.declined}); err != nil {
			return err
		}
	}

	return w.save(out)
}

const minutesPerDay = 24 * 60

// until formats the end of the booking's occupancy. An end past midnight
// is shown on the next day's clock with a "(+1)" marker.
func until(b *model.Booking, settings *model.Settings) string {
	start, err := model.ParseClock("time", b.Time)
	if err != nil || settings == nil {
		return ""
	}
	end := availability.NewInterval(start, b.PartySize(), settings.DurationRules).End
	if end >= minutesPerDay {
		return fmt.Sprintf("%s (+1)", (end % minutesPerDay).String())
	}
	return end.String()
}

func tableNames(ids []string, settings *model.Settings) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name := id
		if settings != nil {
			if t, ok := settings.TableByID(id); ok && t.Name != "" {
				name = t.Name
			}
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
