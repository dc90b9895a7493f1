package version

import "fmt"

// Scheme selects how digitizer chains are addressed.
type Scheme int

const (
	// SharedChain places every detector under one fixed digitizer prefix.
	SharedChain Scheme = iota
	// PerDetector gives each sensitive detector its own addressed chain
	// and adds a manager-level disable switch.
	PerDetector
)

func (s Scheme) String() string {
	if s == PerDetector {
		return "per-detector"
	}
	return "shared"
}

// DigitizerScheme returns the addressing scheme for v.
func (v Version) DigitizerScheme() Scheme {
	if v.AtLeast(Threshold) {
		return PerDetector
	}
	return SharedChain
}

// CoincidenceBase is the address prefix of a coincidence sorter chain.
func (v Version) CoincidenceBase(chain string) string {
	if chain == "" {
		chain = "Coincidences"
	}
	if v.DigitizerScheme() == PerDetector {
		return "/gate/digitizerMgr/CoincidenceSorter/" + chain
	}
	return "/gate/digitizer/" + chain
}

// SinglesDigitizerBase is the address prefix of a singles digitizer for
// one sensitive detector. It reports false below Threshold, where no such
// per-detector chain exists.
func (v Version) SinglesDigitizerBase(detector, singles string) (string, bool) {
	if v.DigitizerScheme() != PerDetector {
		return "", false
	}
	if singles == "" {
		singles = "Singles"
	}
	return fmt.Sprintf("/gate/digitizerMgr/%s/SinglesDigitizer/%s", detector, singles), true
}

// SinglesChainBase is the prefix of the editable singles chain: the
// per-detector chain at or above Threshold, the shared one below.
func (v Version) SinglesChainBase(detector, singles string) string {
	if base, ok := v.SinglesDigitizerBase(detector, singles); ok {
		return base
	}
	return "/digitizer/Singles"
}
