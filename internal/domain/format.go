package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/dustin/go-humanize"
)

// NotAvailable is shown in place of absent statistics.
const NotAvailable = "N/A"

// FormatNumber renders a numeric value with exactly precision decimal
// digits. Absent values (nil or nil pointers) render as "N/A"; values that
// are not numbers are passed through in their string form.
func FormatNumber(value any, precision int) string {
	if precision < 0 {
		precision = 0
	}

	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return NotAvailable
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return NotAvailable
	}

	switch v := rv.Interface().(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v.String()
		}
		return strconv.FormatFloat(f, 'f', precision, 64)
	case string:
		return v
	}

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', precision, 64)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatFloat(float64(rv.Int()), 'f', precision, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatFloat(float64(rv.Uint()), 'f', precision, 64)
	default:
		return fmt.Sprint(rv.Interface())
	}
}

// FormatPercentile renders a rank in [0,1] as a whole percentage, e.g.
// 0.873 -> "87%".
func FormatPercentile(value *float64) string {
	if value == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(math.Round(*value*100), 'f', 0, 64) + "%"
}

// FormatCurrency renders US dollars with grouping and cents, e.g.
// 1234.5 -> "$1,234.50".
func FormatCurrency(value *float64) string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return NotAvailable
	}
	v := *value
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := humanize.FormatFloat("#,###.##", v)
	if s == "0.00" {
		sign = ""
	}
	return sign + "$" + s
}

// FormatCount renders an integer count with thousands grouping.
func FormatCount(value *int64) string {
	if value == nil {
		return NotAvailable
	}
	return humanize.Comma(*value)
}
