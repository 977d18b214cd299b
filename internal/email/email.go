package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type mailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Sender turns booking events into e-mails. Without a SendGrid API key it
// only logs what would have been sent.
type Sender struct {
	users  UserLookup
	client mailClient
	from   *mail.Email
}

func NewSender(cfg config.MailConfig, users UserLookup) *Sender {
	s := &Sender{users: users, from: mail.NewEmail(cfg.FromName, cfg.FromEmail)}
	if cfg.SendGridAPIKey != "" {
		s.client = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	return s
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log := logrus.WithFields(logrus.Fields{"booking_id": event.BookingID, "event": event.Type})

	user, err := s.users.GetByID(ctx, event.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Warn("booking owner no longer exists, skipping notification")
			return nil
		}
		return fmt.Errorf("load booking owner: %w", err)
	}
	if strings.TrimSpace(user.Email) == "" {
		log.Info("booking owner has no e-mail address, skipping notification")
		return nil
	}

	subject, body := compose(event, user)
	if s.client == nil {
		log.WithFields(logrus.Fields{"to": user.Email, "subject": subject}).Info("mail dry run")
		return nil
	}

	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail(displayName(user), user.Email), body, "")
	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("send mail via sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	log.WithField("to", user.Email).Info("notification sent")
	return nil
}

func compose(event kafka.BookingEvent, user *domain.User) (string, string) {
	verb := "confirmed"
	if event.Type == kafka.EventBookingCancelled {
		verb = "cancelled"
	}
	subject := fmt.Sprintf("Booking #%d %s", event.BookingID, verb)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", displayName(user))
	fmt.Fprintf(&b, "Your booking #%d has been %s.\n\n", event.BookingID, verb)
	if event.Route != "" {
		fmt.Fprintf(&b, "Journey: %s\n", event.Route)
	}
	if !event.DepartsAt.IsZero() {
		fmt.Fprintf(&b, "Departure: %s\n", event.DepartsAt.Format("02 Jan 2006 15:04 MST"))
	}
	fmt.Fprintf(&b, "Seats: %d\n", event.Seats)
	fmt.Fprintf(&b, "Total price: %s\n", domain.FormatCents(event.TotalPriceCents))
	return subject, b.String()
}

func displayName(user *domain.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Username
	}
	return name
}
