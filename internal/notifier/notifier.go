// Package notifier matches newly added offers against subscriber interest
// regions and sends digest or single emails. Only additions trigger
// notification; updates and removals never do.
package notifier

import (
	"context"
	"time"

	obsmetrics "github.com/flatwatch/flatwatch/internal/observability/metrics"
	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	"github.com/flatwatch/flatwatch/internal/providers/email"
	subscriberdomain "github.com/flatwatch/flatwatch/internal/subscriber/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log           *zap.Logger
	SubscriberSvc subscriberdomain.Service
	Mailer        email.Provider
}

type Notifier struct {
	log           *zap.Logger
	subscriberSvc subscriberdomain.Service
	mailer        email.Provider
}

func New(p Params) *Notifier {
	return &Notifier{
		log:           p.Log.Named("notifier"),
		subscriberSvc: p.SubscriberSvc,
		mailer:        p.Mailer,
	}
}

// Notify evaluates the added offers for every subscriber and sends the
// resulting emails. A send failure for one subscriber is logged and does
// not stop the rest; the merge has already committed by the time this runs.
func (n *Notifier) Notify(ctx context.Context, added []offerdomain.Offer, snapTime time.Time) error {
	if len(added) == 0 {
		return nil
	}

	subscribers, err := n.subscriberSvc.List(ctx)
	if err != nil {
		return err
	}

	for _, sub := range subscribers {
		emails := BuildEmails(added, snapTime, sub)
		if len(emails) == 0 {
			continue
		}
		n.log.Info("matches for subscriber",
			zap.String("email", sub.Email),
			zap.Int("count", len(emails)),
		)
		for _, m := range emails {
			n.log.Info("sending email", zap.String("subject", m.Subject))
			if err := n.mailer.Send(ctx, m.Address, m.Subject, m.Body); err != nil {
				obsmetrics.EmailsFailedTotal.Inc()
				n.log.Error("failed to send email",
					zap.String("address", m.Address),
					zap.Error(err),
				)
				continue
			}
			obsmetrics.EmailsSentTotal.Inc()
		}
	}
	return nil
}

var Module = fx.Module("notifier",
	fx.Provide(New),
)
