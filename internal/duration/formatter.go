/*
 * MIT License
 *
 * Copyright (c) 2022-2026 GoAkt Team
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package duration renders elapsed times for log lines.
package duration

import (
	"strconv"
	"strings"
	"time"
)

var units = []struct {
	name  string
	value time.Duration
}{
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
}

// Format returns a human-readable string for a time.Duration rounded to the
// millisecond.
//
// Examples:
//   - 90 * time.Second => "1m 30s"
//   - 2 * time.Hour + 15 * time.Minute => "2h 15m"
//   - 1234 * time.Millisecond => "1s 234ms"
func Format(d time.Duration) string {
	d = d.Round(time.Millisecond)
	if d <= 0 {
		return "0s"
	}

	parts := make([]string, 0, len(units))
	for _, unit := range units {
		if d >= unit.value {
			val := d / unit.value
			parts = append(parts, strconv.FormatInt(int64(val), 10)+unit.name)
			d -= val * unit.value
		}
	}
	return strings.Join(parts, " ")
}
