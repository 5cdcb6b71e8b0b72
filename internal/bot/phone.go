package bot

import (
	"regexp"
	"strings"
)

// Philippine mobile numbers: 09XXXXXXXXX or +639XXXXXXXXX, exactly 11
// significant digits.
var phMobilePattern = regexp.MustCompile(`^(09|\+639)\d{9}$`)

// IsPHMobile reports whether the text is a valid Philippine mobile number.
func IsPHMobile(text string) bool {
	return phMobilePattern.MatchString(strings.TrimSpace(text))
}
