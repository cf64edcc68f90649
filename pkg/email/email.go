// Package email holds address helpers shared by the mail transport.
package email

import "strings"

// Mask hides most of the local part so addresses can be logged:
// "marco.rossi@example.com" becomes "m***@example.com". Values without a
// local part are returned unchanged.
func Mask(address string) string {
	at := strings.LastIndexByte(address, '@')
	if at <= 0 {
		return address
	}
	local := []rune(address[:at])
	return string(local[0]) + "***" + address[at:]
}
