package service

import (
	"context"
	"encoding/json"

	"karat/internal/domain"
	"karat/internal/mailer"

	"go.uber.org/zap"
)

// ConfirmationInput is an order summary to be mailed to the shopper.
type ConfirmationInput struct {
	Email              string
	OrderNumber        string
	Orders             []*domain.Order
	TotalAmount        int64
	PromoCode          string
	DiscountPercentage int64
}

// NotificationService sends order-confirmation email.
type NotificationService interface {
	// SendConfirmation renders and dispatches the confirmation, returning
	// the provider's email id. Callers treat failure as non-blocking.
	SendConfirmation(ctx context.Context, input ConfirmationInput) (string, error)
}

type notificationService struct {
	sender mailer.Sender
	from   string
	bcc    string
	logger *zap.Logger
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(sender mailer.Sender, from, bcc string, logger *zap.Logger) NotificationService {
	return &notificationService{
		sender: sender,
		from:   from,
		bcc:    bcc,
		logger: logger,
	}
}

func (s *notificationService) SendConfirmation(ctx context.Context, input ConfirmationInput) (string, error) {
	confirmation := mailer.Confirmation{
		OrderNumber:        input.OrderNumber,
		TotalAmount:        input.TotalAmount,
		PromoCode:          input.PromoCode,
		DiscountPercentage: input.DiscountPercentage,
	}

	for _, order := range input.Orders {
		// The snapshot, not a live product row, names the line: the order
		// must render the way it was sold.
		var details struct {
			Name     string `json:"name"`
			ImageURL string `json:"image_url"`
		}
		if err := json.Unmarshal(order.ProductDetails, &details); err != nil {
			s.logger.Warn("Unreadable product snapshot in order",
				zap.Error(err),
				zap.String("order_id", order.ID.String()),
			)
		}
		confirmation.Lines = append(confirmation.Lines, mailer.ConfirmationLine{
			Name:           details.Name,
			ImageURL:       details.ImageURL,
			SelectedSize:   order.SelectedSize,
			SelectedLength: order.SelectedLength,
			Amount:         order.Amount,
		})
	}

	html, err := mailer.RenderConfirmation(confirmation)
	if err != nil {
		return "", err
	}

	emailID, err := s.sender.Send(ctx, mailer.Message{
		From:    s.from,
		To:      input.Email,
		BCC:     s.bcc,
		Subject: "Your order is confirmed: " + input.OrderNumber,
		HTML:    html,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Confirmation email sent",
		zap.String("email_id", emailID),
		zap.String("order_number", input.OrderNumber),
	)
	return emailID, nil
}
