// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locale formats wall-clock times for reports and relayed
// messages in the operator's locale.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultTag is the locale reports are written in.
const DefaultTag = "fa-IR"

// nativeZero maps a base language to the zero of its native digit block.
// Languages not listed keep ASCII digits.
var nativeZero = map[string]rune{
	"fa": '۰', // U+06F0 extended Arabic-Indic
}

// Clock formats times as HH:MM:SS using the digits of a locale.
type Clock struct {
	printer *message.Printer
	digits  *strings.Replacer
}

// NewClock parses tag (BCP 47) and returns a Clock for it. An empty tag
// selects DefaultTag.
func NewClock(tag string) (*Clock, error) {
	if tag == "" {
		tag = DefaultTag
	}
	t, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", tag, err)
	}
	c := &Clock{printer: message.NewPrinter(t)}
	base, _ := t.Base()
	if zero, ok := nativeZero[base.String()]; ok {
		pairs := make([]string, 0, 20)
		for d := rune(0); d < 10; d++ {
			pairs = append(pairs, string('0'+d), string(zero+d))
		}
		c.digits = strings.NewReplacer(pairs...)
	}
	return c, nil
}

// MustClock is NewClock for tags known at compile time.
func MustClock(tag string) *Clock {
	c, err := NewClock(tag)
	if err != nil {
		panic(err)
	}
	return c
}

// Time renders t as a 24-hour HH:MM:SS string.
func (c *Clock) Time(t time.Time) string {
	return c.num(t.Hour(), 2) + ":" + c.num(t.Minute(), 2) + ":" + c.num(t.Second(), 2)
}

// Date renders t as YYYY/MM/DD in the Gregorian calendar.
func (c *Clock) Date(t time.Time) string {
	return c.num(t.Year(), 4) + "/" + c.num(int(t.Month()), 2) + "/" + c.num(t.Day(), 2)
}

// num formats v zero-padded to width with no grouping separators. The
// printer may or may not localize digits itself, so ASCII digits left in
// its output are mapped to the locale's native block afterwards.
func (c *Clock) num(v, width int) string {
	s := c.printer.Sprint(number.Decimal(v, number.NoSeparator(), number.MinIntegerDigits(width)))
	if c.digits != nil {
		s = c.digits.Replace(s)
	}
	return s
}
