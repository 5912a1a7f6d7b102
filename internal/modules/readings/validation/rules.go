package validation

import (
	"strings"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/types"
)

// Rule inspects a candidate and returns a rejection reason when it fails.
type Rule func(c types.Candidate) (reason string, ok bool)

// Rules run in order; the first failure decides the rejection reason.
var Rules = []Rule{
	okStatusMaxTemperature,
	hxSeriesMaxHumidity,
}

func okStatusMaxTemperature(c types.Candidate) (string, bool) {
	if c.Status == types.StatusOK && c.TemperatureC > 80 {
		return "status=ok not allowed above 80C", false
	}
	return "", true
}

func hxSeriesMaxHumidity(c types.Candidate) (string, bool) {
	if strings.HasPrefix(c.SensorID, "HX") && c.HumidityPct > 90 {
		return "HX series humidity cannot exceed 90%", false
	}
	return "", true
}

// Validate applies Rules and reports whether c is accepted.
func Validate(c types.Candidate) (bool, string) {
	for _, rule := range Rules {
		if reason, ok := rule(c); !ok {
			return false, reason
		}
	}
	return true, ""
}
