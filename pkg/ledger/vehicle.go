package ledger

import (
	"fmt"

	"github.com/corriander/channelhop/pkg/money"
)

// DefaultFuelPrice is a fallback pump price per litre in GBP.
const DefaultFuelPrice = 1.27

// Vehicle models the car carrying the trip: tank capacity, average
// consumption and the pump price used for estimates.
type Vehicle struct {
	Name         string  `json:"name" toml:"name"`
	TankCapacity float64 `json:"tank_capacity" toml:"tank_capacity"` // litres
	Consumption  float64 `json:"consumption" toml:"consumption"`     // litres per km
	FuelPrice    float64 `json:"fuel_price" toml:"fuel_price"`       // GBP per litre
}

// NewVehicle creates a vehicle with the default fuel price.
func NewVehicle(name string, tankCapacity, consumption float64) *Vehicle {
	return &Vehicle{
		Name:         name,
		TankCapacity: tankCapacity,
		Consumption:  consumption,
		FuelPrice:    DefaultFuelPrice,
	}
}

// FillCost estimates the cost of filling the tank from empty.
func (v *Vehicle) FillCost() money.Amount {
	return money.Pounds(v.TankCapacity * v.FuelPrice)
}

// Range estimates how far a full tank goes, in km.
func (v *Vehicle) Range() float64 {
	if v.Consumption == 0 {
		return 0
	}
	return v.TankCapacity / v.Consumption
}

// CostPerKm is the estimated fuel cost per km driven.
func (v *Vehicle) CostPerKm() money.Amount {
	return money.Pounds(v.Consumption * v.FuelPrice)
}

// EstimateFuelCost estimates the fuel cost of driving a distance in km.
func (v *Vehicle) EstimateFuelCost(distance float64) money.Cost {
	return money.NewCost(
		fmt.Sprintf("Fuel (%.0f km)", distance),
		money.Pounds(distance*v.Consumption*v.FuelPrice),
	)
}
