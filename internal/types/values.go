package types

import (
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

// Stringify renders a cell value the way it would read in the workbook.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return x.Format(time.DateTime)
	case civil.Date:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
