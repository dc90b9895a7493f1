// Package units holds the fixed catalog of unit families used to label
// the unit choices of a parameter.
package units

// Unknown is returned by Classify when no family matches.
const Unknown = "UNKNOWN"

var (
	Length            = []string{"pc", "km", "m", "cm", "mm", "mum", "nm", "Ang"}
	Surface           = []string{"km2", "m2", "cm2", "mm2"}
	Volume            = []string{"km3", "m3", "cm3", "mm3"}
	Angle             = []string{"rad", "mrad", "sr", "deg"}
	Time              = []string{"s", "ms", "mus", "ns", "ps"}
	Speed             = []string{"m/s", "cm/s", "mm/s", "m/min", "cm/min", "mm/min", "m/h", "cm/h", "mm/h"}
	AngularSpeed      = []string{"rad/s", "deg/s", "rot/s", "rad/min", "deg/min", "rot/min", "rad/h", "deg/h", "rot/h"}
	Energy            = []string{"eV", "KeV", "MeV", "GeV", "TeV", "PeV", "j"}
	ActivityDose      = []string{"Bq", "Ci", "Gy"}
	AmountOfSubstance = []string{"mol"}
	Mass              = []string{"mg", "g", "kg"}
	VolumicMass       = []string{"g/cm3", "mg/cm3", "kg/m3"}
	ElectricCharge    = []string{"e+", "C", "muA", "nA"}
	ElectricCurrent   = []string{"A", "mA"}
	ElectricPotential = []string{"V", "kV", "MV", "kG"}
	MagneticFlux      = []string{"Wb", "T", "G"}
	Temperature       = []string{"K"}
	ForcePressure     = []string{"N", "Pa", "bar", "atm"}
	Power             = []string{"W"}
	Frequency         = []string{"Hz", "kHz", "MHz"}
	InclusionSwitch   = []string{"exclude", "include"}
)

// Family is a named, ordered unit enumeration.
type Family struct {
	Name  string
	Units []string
}

// Families lists every known family in classification order.
var Families = []Family{
	{"LENGTH_UNITS", Length},
	{"SURFACE_UNITS", Surface},
	{"VOLUME_UNITS", Volume},
	{"ANGLE_UNITS", Angle},
	{"TIME_UNITS", Time},
	{"SPEED_UNITS", Speed},
	{"ANGULAR_SPEED_UNITS", AngularSpeed},
	{"ENERGY_UNITS", Energy},
	{"ACTIVITY_DOSE_UNITS", ActivityDose},
	{"AMOUNT_OF_SUBSTANCE_UNITS", AmountOfSubstance},
	{"MASS_UNITS", Mass},
	{"VOLUMIC_MASS_UNITS", VolumicMass},
	{"ELECTRIC_CHARGE_UNITS", ElectricCharge},
	{"ELECTRIC_CURRENT_UNITS", ElectricCurrent},
	{"ELECTRIC_POTENTIAL_UNITS", ElectricPotential},
	{"MAGNETIC_FLUX_UNITS", MagneticFlux},
	{"TEMPERATURE_UNITS", Temperature},
	{"FORCE_PRESSURE_UNITS", ForcePressure},
	{"POWER_UNITS", Power},
	{"FREQUENCY_UNITS", Frequency},
}

// Classify returns the name of the family whose unit set equals list,
// ignoring order. An empty list yields "" and an unmatched list Unknown.
// The visibility include/exclude switch is not a unit family and is
// classified as Unknown too.
func Classify(list []string) string {
	if len(list) == 0 {
		return ""
	}
	for _, f := range Families {
		if sameSet(f.Units, list) {
			return f.Name
		}
	}
	return Unknown
}

// Lookup returns the family registered under name.
func Lookup(name string) (Family, bool) {
	for _, f := range Families {
		if f.Name == name {
			return f, true
		}
	}
	return Family{}, false
}

func sameSet(a, b []string) bool {
	sa := make(map[string]struct{}, len(a))
	for _, u := range a {
		sa[u] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, u := range b {
		if _, ok := sa[u]; !ok {
			return false
		}
		sb[u] = struct{}{}
	}
	return len(sa) == len(sb)
}
