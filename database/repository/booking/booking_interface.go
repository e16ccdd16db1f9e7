package bookingRepo

import "chairtime/models"

// BookingRepository defines data access for confirmed appointment records.
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	Update(booking *models.Booking) error
	UpcomingByUser(userID string) ([]models.Booking, error)
}
