package bootstrap

import (
	"bistro/internal/pkg/config"
	"bistro/internal/usecase/shared"
)

func NewPolicy(cfg config.Config) (shared.Policy, error) {
	loc, err := cfg.Reservation.Location()
	if err != nil {
		return shared.Policy{}, err
	}
	return shared.Policy{
		Location:        loc,
		OccupancyWindow: cfg.Reservation.OccupancyWindow,
		NoShowGrace:     cfg.Reservation.NoShowGrace,
		LeadTime:        cfg.Reservation.LeadTime,
		BookingHorizon:  cfg.Reservation.BookingHorizon,
		CheckInEarly:    cfg.Reservation.CheckInEarly,
		StoreTimeout:    cfg.Store.Timeout,
	}, nil
}
