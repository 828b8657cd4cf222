package domain

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericSensor struct {
	Device            Device
	Id                string
	ObjectId          string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, total_increasing (for acc energy)
	DeviceClass       string // temperature, power, energy, weight, pressure
	EntityCategory    string // diagnostic, config, nil
	EnabledByDefault  *bool
	Icon              string
}

type GenericButton struct {
	Device         Device
	Id             string
	Name           string
	UniqueId       string
	EntityCategory string
	Icon           string
}

// ETASensor is one endpoint bound to the controller it was resolved on.
type ETASensor struct {
	Endpoint Endpoint
	Id       string // generated entity id, also used in state topics
	Name     string
	UniqueId string
}

// Decimals returns the configured precision, otherwise the controller hint.
// Scaled values keep at least two decimals.
func (s ETASensor) Decimals(controllerDecPlaces int) uint {
	if s.Endpoint.Decimals != nil {
		return *s.Endpoint.Decimals
	}
	var decimals uint
	if controllerDecPlaces > 0 {
		decimals = uint(controllerDecPlaces)
	}
	if s.Endpoint.Factor != 1 && decimals < 2 {
		decimals = 2
	}
	return decimals
}
