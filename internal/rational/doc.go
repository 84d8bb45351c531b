// Package rational provides an exact time value expressed as an integer
// numerator over an integer timescale, and closed ranges of such values.
//
// Comparisons never go through floating point: values with different
// timescales are compared by cross multiplication, so 10005/10000 and
// 2001/2000 compare equal.
package rational
