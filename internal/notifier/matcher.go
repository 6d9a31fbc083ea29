package notifier

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	subscriberdomain "github.com/flatwatch/flatwatch/internal/subscriber/domain"
)

// digestThreshold is the match count above which a subscriber gets one
// combined email instead of one email per match.
const digestThreshold = 3

// Email is an outgoing message built by the matcher.
type Email struct {
	Address string
	Subject string
	Body    string
}

type match struct {
	offer  offerdomain.Offer
	radius float64
}

// BuildEmails evaluates newly added offers against one subscriber's
// interest region and returns the emails to send. Candidates must be at or
// under the subscriber's max price and within max radius of the
// subscriber's location; they are ordered nearest first.
func BuildEmails(added []offerdomain.Offer, now time.Time, sub subscriberdomain.Subscriber) []Email {
	var matches []match
	for _, o := range added {
		if o.Price > float64(sub.MaxPrice) {
			continue
		}
		radius := HaversineMeters(o.Lat, o.Lon, sub.Lat, sub.Lon)
		if radius > float64(sub.MaxRadius) {
			continue
		}
		matches = append(matches, match{offer: o, radius: radius})
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].radius < matches[j].radius
	})

	// Too many matches are combined into one mail.
	if len(matches) > digestThreshold {
		return []Email{{
			Address: sub.Email,
			Subject: fmt.Sprintf("Flats update %s: %d new matches", formatDateTime(now), len(matches)),
			Body:    formatList(matches, sub.Lat, sub.Lon),
		}}
	}

	emails := make([]Email, 0, len(matches))
	for _, m := range matches {
		emails = append(emails, Email{
			Address: sub.Email,
			Subject: fmt.Sprintf("Flats update: %s (%s) %dr, R = %d m",
				formatNumber(m.offer.Price),
				m.offer.OriginalPrice,
				m.offer.Rooms,
				int(math.Round(m.radius)),
			),
			Body: formatList([]match{m}, sub.Lat, sub.Lon),
		})
	}
	return emails
}

func formatList(matches []match, anchorLat, anchorLon float64) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		o := m.offer
		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("$%s (%s) %dr at %s, R = %d m",
				formatNumber(o.Price), o.OriginalPrice, o.Rooms, o.Address, int(math.Round(m.radius))),
			o.URL,
			fmt.Sprintf("route (YA): https://yandex.by/maps/?rtext=%s,%s~%s,%s&rtt=mt",
				formatNumber(anchorLat), formatNumber(anchorLon), formatNumber(o.Lat), formatNumber(o.Lon)),
			fmt.Sprintf("route (GO): https://www.google.com/maps/dir/?api=1&origin=%s,%s&destination=%s,%s",
				formatNumber(anchorLat), formatNumber(anchorLon), formatNumber(o.Lat), formatNumber(o.Lon)),
			"",
		}, "\n"))
	}
	return strings.Join(blocks, "\n")
}

func formatDateTime(t time.Time) string {
	return fmt.Sprintf("%02d.%02d, %02d:%02d", t.Day(), int(t.Month()), t.Hour(), t.Minute())
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
