package netid

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

func TestValidateIPWithMask(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantCode string
	}{
		{name: "host route", input: "10.0.0.5/32", want: "10.0.0.5/32"},
		{name: "leading zeros stripped", input: "010.000.000.005/24", want: "10.0.0.5/24"},
		{name: "mask zero", input: "0.0.0.0/0", want: "0.0.0.0/0"},
		{name: "mask with leading zero", input: "192.168.1.1/08", want: "192.168.1.1/8"},
		{name: "no mask", input: "10.0.0.5", wantCode: errors.ErrCodeFormat},
		{name: "two masks", input: "10.0.0.5/24/8", wantCode: errors.ErrCodeFormat},
		{name: "non integer mask", input: "10.0.0.5/ab", wantCode: errors.ErrCodeFormat},
		{name: "empty mask", input: "10.0.0.5/", wantCode: errors.ErrCodeFormat},
		{name: "mask too large", input: "10.0.0.5/33", wantCode: errors.ErrCodeRange},
		{name: "negative mask", input: "10.0.0.5/-1", wantCode: errors.ErrCodeRange},
		{name: "octet too large", input: "10.0.256.5/32", wantCode: errors.ErrCodeRange},
		{name: "octet non numeric", input: "10.0.x.5/32", wantCode: errors.ErrCodeRange},
		{name: "negative octet", input: "10.-1.0.5/32", wantCode: errors.ErrCodeRange},
		{name: "three octets", input: "10.0.5/32", wantCode: errors.ErrCodeFormat},
		{name: "five octets", input: "10.0.0.0.5/32", wantCode: errors.ErrCodeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateIPWithMask(tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, tt.wantCode), "got %v, want code %s", err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestValidateIPWithMaskIdempotent(t *testing.T) {
	for _, mask := range []int{0, 1, 8, 16, 24, 31, 32} {
		for _, octets := range [][4]int{{0, 0, 0, 0}, {10, 0, 0, 5}, {192, 168, 100, 254}, {255, 255, 255, 255}, {1, 2, 3, 4}} {
			input := fmt.Sprintf("%d.%d.%d.%d/%d", octets[0], octets[1], octets[2], octets[3], mask)
			first, err := ValidateIPWithMask(input)
			require.NoError(t, err, input)
			second, err := ValidateIPWithMask(first.String())
			require.NoError(t, err, input)
			assert.Equal(t, first.String(), second.String())
		}
	}
}

func TestIPWithMaskNetwork(t *testing.T) {
	ip, err := ValidateIPWithMask("10.0.0.5/24")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/24", ip.Network())
	assert.Equal(t, "10.0.0.5/24", ip.String())
}

func TestValidateMAC(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantCode string
	}{
		{name: "mixed case short groups", input: "aa:BB:1:0:ff:9", want: "aa:bb:01:00:ff:09"},
		{name: "canonical", input: "00:0c:29:a4:93:0a", want: "00:0c:29:a4:93:0a"},
		{name: "leading zeros within a byte", input: "0001:2:3:4:5:6", want: "01:02:03:04:05:06"},
		{name: "five groups", input: "aa:bb:cc:dd:ee", wantCode: errors.ErrCodeFormat},
		{name: "seven groups", input: "aa:bb:cc:dd:ee:ff:00", wantCode: errors.ErrCodeFormat},
		{name: "dash separated", input: "aa-bb-cc-dd-ee-ff", wantCode: errors.ErrCodeFormat},
		{name: "non hex group", input: "aa:bb:cc:dd:ee:gg", wantCode: errors.ErrCodeFormat},
		{name: "empty group", input: "aa:bb::dd:ee:ff", wantCode: errors.ErrCodeFormat},
		{name: "group above a byte", input: "aa:bb:100:dd:ee:ff", wantCode: errors.ErrCodeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateMAC(tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, tt.wantCode), "got %v, want code %s", err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestValidateMACIdempotent(t *testing.T) {
	for _, input := range []string{"aa:BB:1:0:ff:9", "F:e:D:c:B:a", "00:00:00:00:00:00", "ff:ff:ff:ff:ff:ff"} {
		first, err := ValidateMAC(input)
		require.NoError(t, err)
		for _, group := range strings.Split(first.String(), ":") {
			assert.Len(t, group, 2)
			assert.Equal(t, strings.ToLower(group), group)
		}
		second, err := ValidateMAC(first.String())
		require.NoError(t, err)
		assert.Equal(t, first.String(), second.String())
	}
}

func TestValidatePort(t *testing.T) {
	p, err := ValidatePort("23")
	require.NoError(t, err)
	assert.Equal(t, PortID{ID: 23, Port: 2, Channel: 3}, p)
	assert.Equal(t, "23", p.String())
	assert.Equal(t, "2:3", p.Human())

	_, err = ValidatePort("34")
	assert.True(t, errors.IsCode(err, errors.ErrCodeRange))

	_, err = ValidatePort("3x")
	assert.True(t, errors.IsCode(err, errors.ErrCodeFormat))

	_, err = ValidatePort("")
	assert.True(t, errors.IsCode(err, errors.ErrCodeFormat))
}

func TestValidatePortDomain(t *testing.T) {
	for id := -50; id <= 400; id++ {
		channel := ((id % 10) + 10) % 10
		port := (id - channel) / 10
		wantOK := channel <= MaxChannel && port >= 0 && port <= MaxPort

		got, err := ValidatePort(fmt.Sprint(id))
		if !wantOK {
			assert.True(t, errors.IsCode(err, errors.ErrCodeRange), "id %d: got %v", id, err)
			continue
		}
		require.NoError(t, err, "id %d", id)
		assert.Equal(t, id, got.Port*10+got.Channel)
		assert.Equal(t, id, got.ID)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercased", input: "Office-LAN", want: "office-lan"},
		{name: "int keyword", input: "INT", want: "int"},
		{name: "with extension dot", input: "pdn.1", want: "pdn.1"},
		{name: "unicode allowed", input: "réseau", want: "réseau"},
		{name: "empty", input: "", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "colon", input: "a:b", wantErr: true},
		{name: "wildcard", input: "a*", wantErr: true},
		{name: "control character", input: "a\tb", wantErr: true},
		{name: "dot", input: ".", wantErr: true},
		{name: "dot dot", input: "..", wantErr: true},
		{name: "trailing period", input: "route.", wantErr: true},
		{name: "trailing space", input: "route ", wantErr: true},
		{name: "reserved device", input: "con", wantErr: true},
		{name: "reserved device with extension", input: "LPT1.json", wantErr: true},
		{name: "too long", input: strings.Repeat("a", 256), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input)
			if tt.wantErr {
				assert.True(t, errors.IsCode(err, errors.ErrCodeFormat), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
