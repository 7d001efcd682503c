package app

import (
	"context"
	"time"

	orderdomain "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/domain"
	orderrepo "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/repository"
	ordersvc "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/service"
)

// ordersAdapter exposes the order module to the payment service through the
// narrow interface the payment service declares. Reads and the guarded paid
// flip go straight to the repository; the COD transition goes through the
// order service so it is validated and published like any other transition.
type ordersAdapter struct {
	repo orderrepo.OrderRepository
	svc  *ordersvc.OrderService
}

func (a *ordersAdapter) Get(ctx context.Context, id string) (*orderdomain.Order, error) {
	return a.repo.GetByID(ctx, id)
}

func (a *ordersAdapter) MarkPaid(ctx context.Context, id string, paidAt time.Time, paymentRef string) error {
	return a.repo.MarkPaid(ctx, id, paidAt, paymentRef)
}

func (a *ordersAdapter) MarkProcessing(ctx context.Context, id, reason string) error {
	_, err := a.svc.UpdateStatus(ctx, id, orderdomain.OrderStatusProcessing, reason)
	return err
}
