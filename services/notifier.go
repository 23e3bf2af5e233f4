package services

import "github.com/yeremiapane/storefront-app/models"

// Notifier menerima event perubahan order untuk feed staff (kds)
type Notifier interface {
	OrderUpdated(order models.Order)
	PaymentUpdated(order models.Order)
}

type nopNotifier struct{}

func (nopNotifier) OrderUpdated(models.Order)   {}
func (nopNotifier) PaymentUpdated(models.Order) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
