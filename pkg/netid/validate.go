package netid

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"unicode"

	"github.com/asaskevich/govalidator"
	"inet.af/netaddr"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

// Field names used in error messages and metrics labels.
const (
	FieldIP   = "ip address"
	FieldMAC  = "mac address"
	FieldPort = "port id"
	FieldName = "route name"
)

const maxNameBytes = 255

var (
	// reservedNameChars are rejected anywhere in a route name
	reservedNameChars = `\/:*?"<>|`

	// reservedNames cannot be used as a file name on at least one platform
	reservedNames = map[string]bool{
		"CON": true, "PRN": true, "AUX": true, "NUL": true,
		"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
		"COM6": true, "COM7": true, "COM8": true, "COM9": true,
		"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
		"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
	}
)

// ValidateIPWithMask validates an IPv4 address with a prefix length, e.g. "10.0.0.5/32".
// Octets and mask are re-rendered as plain decimal.
func ValidateIPWithMask(input string) (IPWithMask, error) {
	parts := strings.Split(input, "/")
	if len(parts) != 2 {
		return IPWithMask{}, errors.FormatError(FieldIP, input, "expected <a.b.c.d>/<mask>")
	}

	mask, err := parseDecimal(parts[1])
	if err != nil {
		return IPWithMask{}, errors.FormatError(FieldIP, input, fmt.Sprintf("mask %q is not an integer", parts[1]))
	}
	if mask < 0 || mask > 32 {
		return IPWithMask{}, errors.RangeError(FieldIP, input, fmt.Sprintf("mask %d not in [0,32]", mask))
	}

	octets := strings.Split(parts[0], ".")
	if len(octets) != net.IPv4len {
		return IPWithMask{}, errors.FormatError(FieldIP, input, "expected four dotted-decimal octets")
	}

	var b [net.IPv4len]byte
	for i, o := range octets {
		v, err := parseDecimal(o)
		if err != nil || v < 0 || v > math.MaxUint8 {
			return IPWithMask{}, errors.RangeError(FieldIP, input, fmt.Sprintf("octet %q not in [0,255]", o))
		}
		b[i] = byte(v)
	}

	return IPWithMask{
		prefix: netaddr.IPPrefixFrom(netaddr.IPv4(b[0], b[1], b[2], b[3]), uint8(mask)),
	}, nil
}

// ValidateMAC validates six colon separated hexadecimal groups.
// Each group is re-rendered as two lowercase hex digits.
func ValidateMAC(input string) (MAC, error) {
	groups := strings.Split(input, ":")
	if len(groups) != 6 {
		return MAC{}, errors.FormatError(FieldMAC, input, "expected 6 colon separated hex groups")
	}

	addr := make(net.HardwareAddr, 6)
	for i, g := range groups {
		g = strings.TrimSpace(g)
		if !govalidator.IsHexadecimal(g) {
			return MAC{}, errors.FormatError(FieldMAC, input, fmt.Sprintf("group %q is not hexadecimal", g))
		}
		v, err := strconv.ParseUint(g, 16, 64)
		if err != nil || v > math.MaxUint8 {
			return MAC{}, errors.RangeError(FieldMAC, input, fmt.Sprintf("group %q is not a single byte", g))
		}
		addr[i] = byte(v)
	}

	return MAC{addr: addr}, nil
}

// ValidatePort validates a packed port identifier. The last decimal digit is
// the channel (0-3), the remaining digits the port number (0-31).
func ValidatePort(input string) (PortID, error) {
	id, err := parseDecimal(input)
	if err != nil {
		return PortID{}, errors.FormatError(FieldPort, input, "expected an integer [port number][channel number]")
	}
	return PortFromID(id)
}

// PortFromID validates an already numeric port identifier, e.g. one read back
// from a persisted record.
func PortFromID(id int) (PortID, error) {
	channel := floorMod(id, 10)
	port := floorDiv(id, 10)

	value := strconv.Itoa(id)
	if channel < 0 || channel > MaxChannel {
		return PortID{}, errors.RangeError(FieldPort, value, fmt.Sprintf("channel %d not in [0,%d]", channel, MaxChannel))
	}
	if port < 0 || port > MaxPort {
		return PortID{}, errors.RangeError(FieldPort, value, fmt.Sprintf("port %d not in [0,%d]", port, MaxPort))
	}

	return PortID{ID: id, Port: port, Channel: channel}, nil
}

// ValidateName validates a route name as a single, portable file name
// component and folds it to lowercase.
func ValidateName(input string) (string, error) {
	if input == "" {
		return "", errors.FormatError(FieldName, input, "name is empty")
	}
	if !govalidator.ByteLength(input, "1", strconv.Itoa(maxNameBytes)) {
		return "", errors.FormatError(FieldName, input, fmt.Sprintf("name is longer than %d bytes", maxNameBytes))
	}
	if input == "." || input == ".." {
		return "", errors.FormatError(FieldName, input, "name is a relative path")
	}
	for _, r := range input {
		if strings.ContainsRune(reservedNameChars, r) {
			return "", errors.FormatError(FieldName, input, fmt.Sprintf("character %q is not allowed", r))
		}
		if unicode.IsControl(r) {
			return "", errors.FormatError(FieldName, input, "control characters are not allowed")
		}
	}
	if strings.HasSuffix(input, " ") || strings.HasSuffix(input, ".") {
		return "", errors.FormatError(FieldName, input, "name cannot end with a space or a period")
	}

	root := strings.ToUpper(input)
	if i := strings.Index(root, "."); i >= 0 {
		root = root[:i]
	}
	if reservedNames[strings.TrimSpace(root)] {
		return "", errors.FormatError(FieldName, input, "name is a reserved device name")
	}

	return strings.ToLower(input), nil
}

// parseDecimal accepts an optionally signed base-10 integer with surrounding
// whitespace and leading zeros.
func parseDecimal(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
