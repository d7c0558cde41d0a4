package render

import (
	"fmt"
	"time"

	"github.com/raffaelramalhorosa/techfeed/internal/models"
)

// DisplayLayout is the day-first date shown next to each article.
const DisplayLayout = "02-01-2006"

// FormatError means a publication timestamp did not match models.TimestampLayout.
type FormatError struct {
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format date %q: %v", e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// FormatDate turns "2021-03-15T10:00:00Z" into "15-03-2021".
func FormatDate(timestamp string) (string, error) {
	t, err := time.Parse(models.TimestampLayout, timestamp)
	if err != nil {
		return "", &FormatError{Value: timestamp, Err: err}
	}
	return t.Format(DisplayLayout), nil
}
