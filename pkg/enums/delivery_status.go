package enums

// DeliveryStatus tracks whether sold goods left the shop.
type DeliveryStatus string

const (
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusPending   DeliveryStatus = "pending"
)

func (d DeliveryStatus) IsValid() bool {
	return d == DeliveryStatusDelivered || d == DeliveryStatusPending
}
