package rational

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"time"
)

// DefaultTimescale is the timescale used for caption boundaries. One
// millisecond is ten units, so SubRip timestamps convert without rounding.
const DefaultTimescale int32 = 10_000

// Time is an exact time value of Value/Timescale seconds.
type Time struct {
	Value     int64
	Timescale int32
}

// Zero is the origin of every track.
var Zero = Time{Value: 0, Timescale: 1}

// New constructs a Time. A non-positive timescale panics.
func New(value int64, timescale int32) Time {
	t := Time{Value: value, Timescale: timescale}
	t.mustValid()
	return t
}

// ErrSecondsOutOfRange is returned by ParseSeconds for values that do not
// fit the numerator at the requested timescale.
var ErrSecondsOutOfRange = errors.New("rational: seconds value out of range")

// ParseSeconds converts a floating-point seconds value, rounding to the
// nearest numerator at the requested timescale. Non-finite values and values
// that overflow int64 are rejected.
func ParseSeconds(seconds float64, timescale int32) (Time, error) {
	if timescale <= 0 {
		return Time{}, fmt.Errorf("rational: invalid timescale %d", timescale)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Time{}, fmt.Errorf("rational: seconds value %v is not finite", seconds)
	}
	scaled := math.Round(seconds * float64(timescale))
	// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
	if scaled >= math.MaxInt64 || scaled < math.MinInt64 {
		return Time{}, fmt.Errorf("%w: %v", ErrSecondsOutOfRange, seconds)
	}
	return Time{Value: int64(scaled), Timescale: timescale}, nil
}

// FromSeconds is ParseSeconds for values known to be in range. It panics
// otherwise.
func FromSeconds(seconds float64, timescale int32) Time {
	t, err := ParseSeconds(seconds, timescale)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// FromMilliseconds converts an integral millisecond count without rounding
// when the timescale is a multiple of 1000.
func FromMilliseconds(ms int64, timescale int32) Time {
	if timescale%1000 == 0 {
		return New(ms*int64(timescale/1000), timescale)
	}
	return New(ms, 1000).ConvertScale(timescale)
}

// FromDuration converts a time.Duration at the requested timescale.
func FromDuration(d time.Duration, timescale int32) Time {
	whole := int64(d / time.Second)
	rem := int64(d % time.Second)
	scaled := rem * int64(timescale)
	q := scaled / int64(time.Second)
	r := scaled % int64(time.Second)
	if r < 0 {
		r = -r
	}
	if 2*r >= int64(time.Second) {
		if scaled < 0 {
			q--
		} else {
			q++
		}
	}
	return New(whole*int64(timescale)+q, timescale)
}

// Valid reports whether the timescale is usable.
func (t Time) Valid() bool {
	return t.Timescale > 0
}

func (t Time) mustValid() {
	if t.Timescale <= 0 {
		panic(fmt.Sprintf("rational: invalid timescale %d", t.Timescale))
	}
}

// Seconds returns the value as floating-point seconds.
func (t Time) Seconds() float64 {
	t.mustValid()
	return float64(t.Value) / float64(t.Timescale)
}

// Duration truncates the value to nanosecond precision.
func (t Time) Duration() time.Duration {
	t.mustValid()
	ts := int64(t.Timescale)
	whole := t.Value / ts
	rem := t.Value % ts
	return time.Duration(whole)*time.Second + time.Duration(rem*int64(time.Second)/ts)
}

// Compare returns -1, 0, or +1. Values with different timescales are compared
// by cross multiplication in 128-bit arithmetic.
func (t Time) Compare(other Time) int {
	t.mustValid()
	other.mustValid()
	if t.Timescale == other.Timescale {
		return cmp.Compare(t.Value, other.Value)
	}
	return compareProducts(t.Value, int64(other.Timescale), other.Value, int64(t.Timescale))
}

func (t Time) Less(other Time) bool        { return t.Compare(other) < 0 }
func (t Time) LessOrEqual(other Time) bool { return t.Compare(other) <= 0 }
func (t Time) Equal(other Time) bool       { return t.Compare(other) == 0 }

// IsNegative reports whether the value lies before Zero.
func (t Time) IsNegative() bool {
	t.mustValid()
	return t.Value < 0
}

// ConvertScale re-expresses t at another timescale, rounding half away from zero.
func (t Time) ConvertScale(timescale int32) Time {
	t.mustValid()
	if timescale == t.Timescale {
		return t
	}
	num := new(big.Int).Mul(big.NewInt(t.Value), big.NewInt(int64(timescale)))
	den := big.NewInt(int64(t.Timescale))
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	r.Abs(r).Lsh(r, 1)
	if r.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if !q.IsInt64() {
		panic(fmt.Sprintf("rational: %s overflows at timescale %d", t, timescale))
	}
	return New(q.Int64(), timescale)
}

// Add returns t+other in t's timescale.
func (t Time) Add(other Time) Time {
	other = other.ConvertScale(t.Timescale)
	return New(t.Value+other.Value, t.Timescale)
}

// Sub returns t-other in t's timescale.
func (t Time) Sub(other Time) Time {
	other = other.ConvertScale(t.Timescale)
	return New(t.Value-other.Value, t.Timescale)
}

// Min returns the earlier of a and b, preferring a on ties.
func Min(a, b Time) Time {
	if b.Less(a) {
		return b
	}
	return a
}

// Max returns the later of a and b, preferring a on ties.
func Max(a, b Time) Time {
	if a.Less(b) {
		return b
	}
	return a
}

// String formats the value as a SubRip timestamp (HH:MM:SS,mmm).
func (t Time) String() string {
	if !t.Valid() {
		return "invalid"
	}
	ms := t.ConvertScale(1000).Value
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	return fmt.Sprintf("%s%02d:%02d:%02d,%03d", sign, h, m, s, ms%1000)
}

type timeJSON struct {
	Value     *int64   `json:"value,omitempty"`
	Timescale int32    `json:"timescale,omitempty"`
	Seconds   *float64 `json:"seconds,omitempty"`
}

// MarshalJSON includes the float seconds for readability.
func (t Time) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New("rational: cannot marshal invalid time")
	}
	value := t.Value
	seconds := t.Seconds()
	return json.Marshal(timeJSON{Value: &value, Timescale: t.Timescale, Seconds: &seconds})
}

// UnmarshalJSON accepts {"value":v,"timescale":ts} or {"seconds":s}. When both
// forms are present the exact form wins.
func (t *Time) UnmarshalJSON(data []byte) error {
	var raw timeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Value != nil:
		ts := raw.Timescale
		if ts == 0 {
			ts = DefaultTimescale
		}
		if ts < 0 {
			return fmt.Errorf("rational: invalid timescale %d", ts)
		}
		*t = Time{Value: *raw.Value, Timescale: ts}
	case raw.Seconds != nil:
		ts := raw.Timescale
		if ts <= 0 {
			ts = DefaultTimescale
		}
		parsed, err := ParseSeconds(*raw.Seconds, ts)
		if err != nil {
			return err
		}
		*t = parsed
	default:
		return errors.New("rational: expected value/timescale or seconds")
	}
	return nil
}

func compareProducts(a, b, c, d int64) int {
	sa, sc := sign(a), sign(c)
	if sa != sc {
		return cmp.Compare(sa, sc)
	}
	if sa == 0 {
		return 0
	}
	hi1, lo1 := bits.Mul64(magnitude(a), uint64(b))
	hi2, lo2 := bits.Mul64(magnitude(c), uint64(d))
	r := cmp.Compare(hi1, hi2)
	if r == 0 {
		r = cmp.Compare(lo1, lo2)
	}
	if sa < 0 {
		return -r
	}
	return r
}

func sign(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
