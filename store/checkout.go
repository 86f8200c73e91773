package store

import (
	"fmt"
	"strings"

	"bakeryapi/apperr"
	"bakeryapi/cart"
	"bakeryapi/models"
	"bakeryapi/orders"

	"github.com/google/uuid"
)

// buildOrders merges the cart and splits it into one pending order per
// bakery. It checks the merged quantity of each product against stock and
// returns the stock to take per product id.
func buildOrders(entries []models.CartEntry, req CheckoutRequest) ([]models.Order, map[uint]int, error) {
	stock := make(map[uint]int, len(entries))
	for _, e := range entries {
		stock[e.Product.ID] = e.Product.Stock
	}

	lines := cart.Merge(models.RawEntries(entries))
	groups := cart.GroupByOwner(lines)
	if len(groups) == 0 {
		return nil, nil, apperr.E(apperr.Invalid, "cart is empty")
	}

	take := make(map[uint]int, len(lines))
	for _, l := range lines {
		id := models.ParseID(l.Key)
		if l.Quantity == 0 {
			continue
		}
		if l.Quantity > stock[id] {
			return nil, nil, apperr.E(apperr.Conflict,
				fmt.Sprintf("Not enough stock for %s. Available: %d, Requested: %d", l.Product.Name, stock[id], l.Quantity))
		}
		take[id] = l.Quantity
	}

	var out []models.Order
	for _, g := range groups {
		o := models.Order{
			OrderNumber:     newOrderNumber(req),
			CustomerID:      req.CustomerID,
			OwnerID:         models.ParseID(g.OwnerID),
			Status:          orders.StatusPending,
			PaymentStatus:   orders.PaymentUnpaid,
			TotalAmount:     g.Subtotal,
			DeliveryAddress: req.DeliveryAddress,
			Note:            req.Note,
		}
		for _, l := range g.Lines {
			o.Items = append(o.Items, models.OrderItem{
				ProductID: models.ParseID(l.Key),
				Name:      l.Product.Name,
				UnitPrice: l.UnitPrice,
				Quantity:  l.Quantity,
				LineTotal: l.TotalPrice,
			})
		}
		out = append(out, o)
	}
	return out, take, nil
}

func newOrderNumber(req CheckoutRequest) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("ORD-%s-%s", req.Now.Format("20060102"), suffix)
}

// restock returns the quantities to put back when an order is cancelled.
func restock(o models.Order) map[uint]int {
	back := make(map[uint]int, len(o.Items))
	for _, it := range o.Items {
		back[it.ProductID] += it.Quantity
	}
	return back
}

func cancelling(before, after orders.Status) bool {
	return before != orders.StatusCancelled && after == orders.StatusCancelled
}
