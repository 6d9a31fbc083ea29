package notifier

import (
	"fmt"
	"strings"
	"testing"
	"time"

	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	subscriberdomain "github.com/flatwatch/flatwatch/internal/subscriber/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOffer(id string, price, lat, lon float64) offerdomain.Offer {
	return offerdomain.Offer{
		ID:            id,
		Price:         price,
		OriginalPrice: fmt.Sprintf("%.0f dollars", price),
		Lat:           lat,
		Lon:           lon,
		Rooms:         1,
		Address:       "street name, 12",
		URL:           "https://www.example.com/" + id,
	}
}

func testSubscriber(lat, lon float64, maxPrice, maxRadius int) subscriberdomain.Subscriber {
	return subscriberdomain.Subscriber{
		Email:     "sub@example.com",
		Lat:       lat,
		Lon:       lon,
		MaxPrice:  maxPrice,
		MaxRadius: maxRadius,
	}
}

func TestHaversineMeters(t *testing.T) {
	assert.Zero(t, HaversineMeters(20, 30, 20, 30))

	// One degree of latitude is about 111 km.
	d := HaversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 100)

	// Symmetry.
	assert.InDelta(t, HaversineMeters(10, 20, 30, 40), HaversineMeters(30, 40, 10, 20), 1e-6)
}

func TestBuildEmails_SingleMatchSubject(t *testing.T) {
	sub := testSubscriber(20, 30, 400, 1000)
	added := []offerdomain.Offer{testOffer("1", 300, 20, 30)}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	emails := BuildEmails(added, now, sub)

	require.Len(t, emails, 1)
	assert.Equal(t, "sub@example.com", emails[0].Address)
	assert.Equal(t, "Flats update: 300 (300 dollars) 1r, R = 0 m", emails[0].Subject)
	assert.Contains(t, emails[0].Body, "https://www.example.com/1")
	assert.Contains(t, emails[0].Body, "route (YA): https://yandex.by/maps/?rtext=20,30~20,30&rtt=mt")
	assert.Contains(t, emails[0].Body, "route (GO): https://www.google.com/maps/dir/?api=1&origin=20,30&destination=20,30")
}

func TestBuildEmails_PriceExcludes(t *testing.T) {
	sub := testSubscriber(20, 30, 400, 1000)
	added := []offerdomain.Offer{testOffer("1", 500, 20, 30)}

	assert.Empty(t, BuildEmails(added, time.Now(), sub))
}

func TestBuildEmails_PriceAtLimitMatches(t *testing.T) {
	sub := testSubscriber(20, 30, 400, 1000)
	added := []offerdomain.Offer{testOffer("1", 400, 20, 30)}

	assert.Len(t, BuildEmails(added, time.Now(), sub), 1)
}

func TestBuildEmails_RadiusExcludes(t *testing.T) {
	sub := testSubscriber(20, 30, 400, 1000)
	// ~111 km away, far outside the 1000 m radius.
	added := []offerdomain.Offer{testOffer("1", 300, 21, 30)}

	assert.Empty(t, BuildEmails(added, time.Now(), sub))
}

func TestBuildEmails_UpToThreeMatchesAreSeparate(t *testing.T) {
	sub := testSubscriber(20, 30, 1000, 10000)
	added := []offerdomain.Offer{
		testOffer("1", 300, 20, 30),
		testOffer("2", 310, 20.001, 30),
		testOffer("3", 320, 20.002, 30),
	}

	emails := BuildEmails(added, time.Now(), sub)

	require.Len(t, emails, 3)
	for _, m := range emails {
		assert.True(t, strings.HasPrefix(m.Subject, "Flats update: "), m.Subject)
	}
}

func TestBuildEmails_FourMatchesBecomeDigest(t *testing.T) {
	sub := testSubscriber(20, 30, 1000, 10000)
	added := []offerdomain.Offer{
		testOffer("1", 300, 20, 30),
		testOffer("2", 310, 20.001, 30),
		testOffer("3", 320, 20.002, 30),
		testOffer("4", 330, 20.003, 30),
	}
	now := time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC)

	emails := BuildEmails(added, now, sub)

	require.Len(t, emails, 1)
	assert.Equal(t, "Flats update 01.05, 09:05: 4 new matches", emails[0].Subject)
	for _, o := range added {
		assert.Contains(t, emails[0].Body, o.URL)
	}
}

func TestBuildEmails_SortedByDistance(t *testing.T) {
	sub := testSubscriber(20, 30, 1000, 100000)
	added := []offerdomain.Offer{
		testOffer("far", 300, 20.5, 30),
		testOffer("near", 300, 20.001, 30),
	}

	emails := BuildEmails(added, time.Now(), sub)

	require.Len(t, emails, 2)
	assert.Contains(t, emails[0].Body, "https://www.example.com/near")
	assert.Contains(t, emails[1].Body, "https://www.example.com/far")
}
