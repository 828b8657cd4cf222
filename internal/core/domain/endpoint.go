package domain

const (
	UNIT_CELSIUS        = "°C"
	UNIT_KILO_WATT      = "kW"
	UNIT_KILO_WATT_HOUR = "kWh"
	UNIT_KILOGRAMS      = "kg"
	UNIT_BAR            = "bar"
	UNIT_PERCENTAGE     = "%"
)

const (
	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_CONNECTIVITY    = "connectivity"
	DEVICE_CLASS_ENERGY          = "energy"
	DEVICE_CLASS_MOISTURE        = "moisture"
	DEVICE_CLASS_POWER           = "power"
	DEVICE_CLASS_PRESSURE        = "pressure"
	DEVICE_CLASS_TEMPERATURE     = "temperature"
	DEVICE_CLASS_WEIGHT          = "weight"
	ENTITY_CLASS_DIAGNOSTIC      = "diagnostic"
	ENTITY_CLASS_CONFIG          = "config"
)

// Endpoint describes one data point of the controller. URI is relative to
// the /user/var and /user/menu trees.
type Endpoint struct {
	URI         string
	Name        string // explicit display name, skips menu lookup
	NameSuffix  string
	Unit        string
	DeviceClass string
	StateClass  string
	Factor      float64
	Decimals    *uint
}

// WithDefaults fills the classification and scale defaults.
func (e Endpoint) WithDefaults() Endpoint {
	if e.DeviceClass == "" {
		e.DeviceClass = DEVICE_CLASS_TEMPERATURE
	}
	if e.StateClass == "" {
		e.StateClass = STATE_CLASS_MEASUREMENT
	}
	if e.Factor == 0 {
		e.Factor = 1.0
	}
	return e
}

// controller function blocks
const (
	FUB_BOILER    = "/264/10891"
	FUB_BUFFER    = "/120/10601"
	FUB_STORAGE   = "/264/10211"
	FUB_SOLAR     = "/120/10221"
	FUB_CIRCUIT_1 = "/120/10101"
	FUB_CIRCUIT_2 = "/120/10102"
)

// DefaultEndpoints is the built-in data point catalog.
func DefaultEndpoints() []Endpoint {
	endpoints := []Endpoint{
		{URI: FUB_BUFFER + "/0/0/12197", Unit: UNIT_CELSIUS},
		{URI: FUB_BOILER + "/0/0/12077", Unit: UNIT_KILO_WATT, DeviceClass: DEVICE_CLASS_POWER},
		{URI: FUB_BOILER + "/0/0/12006", Unit: UNIT_CELSIUS},
		{URI: FUB_BOILER + "/0/11109/0", Unit: UNIT_CELSIUS},
		{URI: FUB_CIRCUIT_1 + "/0/11125/2121", NameSuffix: " Vorlauf Heizkreis 1", Unit: UNIT_CELSIUS},
		{URI: FUB_CIRCUIT_2 + "/0/11125/2121", NameSuffix: " Vorlauf Heizkreis 2", Unit: UNIT_CELSIUS},
		{URI: FUB_STORAGE + "/0/0/12015", Unit: UNIT_KILOGRAMS, DeviceClass: DEVICE_CLASS_WEIGHT},
		{URI: FUB_BOILER + "/0/0/12016", Unit: UNIT_KILOGRAMS, DeviceClass: DEVICE_CLASS_WEIGHT},
		{URI: FUB_BOILER + "/0/0/12180", Unit: UNIT_BAR, DeviceClass: DEVICE_CLASS_PRESSURE},
		{URI: FUB_BOILER + "/0/0/12011", Unit: UNIT_KILOGRAMS, DeviceClass: DEVICE_CLASS_WEIGHT},
		{URI: FUB_SOLAR + "/0/11139/0", Unit: UNIT_CELSIUS},
		{URI: FUB_SOLAR + "/0/0/12379", NameSuffix: " Solar", Unit: UNIT_KILO_WATT, DeviceClass: DEVICE_CLASS_POWER},
		{URI: FUB_SOLAR + "/0/0/12354", Unit: UNIT_PERCENTAGE, DeviceClass: DEVICE_CLASS_MOISTURE},
		{URI: FUB_BOILER + "/0/0/12016", NameSuffix: " gesamt Solar", Unit: UNIT_KILO_WATT_HOUR,
			DeviceClass: DEVICE_CLASS_ENERGY, StateClass: STATE_CLASS_TOTAL_INCREASING},
		{URI: FUB_SOLAR + "/0/0/12349", NameSuffix: " Energie", Unit: UNIT_KILO_WATT_HOUR,
			DeviceClass: DEVICE_CLASS_ENERGY, StateClass: STATE_CLASS_TOTAL_INCREASING, Factor: 4.8},
	}
	for i := range endpoints {
		endpoints[i] = endpoints[i].WithDefaults()
	}
	return endpoints
}
