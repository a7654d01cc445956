package commands

import (
	"flag"
	"fmt"
	"time"

	"dayplan/internal/service"
)

// dayFlag is the --date flag shared by plan, tasks and prompt.
type dayFlag struct {
	value string
	ref   time.Time
}

func (d *dayFlag) register(fs *flag.FlagSet) {
	fs.StringVar(&d.value, "date", "", "")
}

// resolve checks --date and stamps the run with the clock. An explicit date
// reaches the runner unchanged through Options.Date.
func (d *dayFlag) resolve() error {
	d.ref = time.Now()
	if d.value == "" {
		return nil
	}
	if _, err := time.Parse(service.DateLayout, d.value); err != nil {
		return fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", d.value)
	}
	return nil
}

// SetDate sets the --date value (for testing).
func (d *dayFlag) SetDate(s string) { d.value = s }
