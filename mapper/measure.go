package mapper

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidMeasurement is returned for measurements that cannot be parsed.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// measurementNoise removes approximation markers and the centimetre unit.
var measurementNoise = strings.NewReplacer(
	"circa", "",
	"ca.", "",
	"cm", "",
	"c.", "",
	"+/-", "",
	"±", "",
	"~", "",
	"?", "",
	">", "",
	"<", "",
)

// ParseMeasurement parses a raw dimension in centimetres and returns it in
// metres. ok is false when nothing is left after removing markers and units;
// err is set when what is left is not a number.
func ParseMeasurement(raw string) (metres float64, ok bool, err error) {
	s := measurementNoise.Replace(strings.ToLower(raw))
	s = strings.Join(strings.Fields(s), "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false, nil
	}
	cm, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(cm, 0) || math.IsNaN(cm) {
		return 0, false, fmt.Errorf("%w %q", ErrInvalidMeasurement, raw)
	}
	return cm / 100, true, nil
}
