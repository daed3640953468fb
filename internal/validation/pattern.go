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

package validation

import (
	"fmt"
	"regexp"
)

// patternValidator checks a value against a compiled regular expression
type patternValidator struct {
	re        *regexp.Regexp
	value     string
	customErr error
}

var _ Validator = (*patternValidator)(nil)

// NewPatternValidator creates a validator failing with customErr when value
// does not match re. A nil customErr yields a generic message.
func NewPatternValidator(re *regexp.Regexp, value string, customErr error) Validator {
	return &patternValidator{
		re:        re,
		value:     value,
		customErr: customErr,
	}
}

// Validate executes the validation
func (x *patternValidator) Validate() error {
	if x.re.MatchString(x.value) {
		return nil
	}
	if x.customErr != nil {
		return x.customErr
	}
	return fmt.Errorf("%q does not match %s", x.value, x.re)
}
