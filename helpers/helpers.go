package helpers

import (
	"errors"
	"image/color"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
)

// Address display layout: head + separator + tail
const (
	addrHead      = 5
	addrTail      = 5
	addrSeparator = "..."
)

// ErrAddressTooShort is returned by FormatAddress for input that cannot hold
// both the head and the tail of the shortened form.
var ErrAddressTooShort = errors.New("address too short to format")

var ethAddressRe = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// FormatAddress shortens an address for display: the first and last five
// characters joined by "...".
func FormatAddress(addr string) (string, error) {
	if len(addr) < addrHead+addrTail {
		return "", ErrAddressTooShort
	}
	return addr[:addrHead] + addrSeparator + addr[len(addr)-addrTail:], nil
}

// ShortenAddr formats a checksummed address. A common.Address always renders
// as 42 characters, so this cannot fail.
func ShortenAddr(addr common.Address) string {
	s, _ := FormatAddress(addr.Hex())
	return s
}

// IsValidEthAddress checks if a string is a valid Ethereum address
func IsValidEthAddress(s string) bool {
	return ethAddressRe.MatchString(s)
}

// FadeString creates a gradient colored string
func FadeString(s string, firstColor string, lastColor string) string {
	if s == "" {
		return s
	}
	blends := gamut.Blends(lipgloss.Color(firstColor), lipgloss.Color(lastColor), len([]rune(s)))
	return rainbow(lipgloss.NewStyle(), s, blends)
}

func rainbow(baseStyle lipgloss.Style, str string, colors []color.Color) string {
	var result string
	for i, c := range []rune(str) {
		col, _ := colorful.MakeColor(colors[i%len(colors)])
		result += baseStyle.Foreground(lipgloss.Color(col.Hex())).Render(string(c))
	}
	return result
}

// Max returns the maximum of two integers
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min returns the minimum of two integers
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
