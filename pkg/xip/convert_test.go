package xip

import (
	"math/big"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddrUint32RoundTrip(t *testing.T) {
	tests := []struct {
		addr string
		v    uint32
	}{
		{addr: "0.0.0.0", v: 0},
		{addr: "10.0.0.1", v: 0x0A000001},
		{addr: "192.168.1.1", v: 0xC0A80101},
		{addr: "255.255.255.255", v: 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			v, ok := AddrToUint32(netip.MustParseAddr(tt.addr))
			require.True(t, ok)
			assert.Equal(t, tt.v, v)
			assert.Equal(t, tt.addr, AddrFromUint32(tt.v).String())
		})
	}
}

func TestAddrToUint32_NonIPv4(t *testing.T) {
	_, ok := AddrToUint32(netip.MustParseAddr("2001:db8::1"))
	assert.False(t, ok)
	_, ok = AddrToUint32(netip.Addr{})
	assert.False(t, ok)

	// IPv4-mapped IPv6 视为 IPv4
	v, ok := AddrToUint32(netip.MustParseAddr("::ffff:192.168.1.1"))
	assert.True(t, ok)
	assert.Equal(t, uint32(0xC0A80101), v)
}

func TestAddrBigIntRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		addr string
		ver  Version
	}{
		{name: "v4 zero", addr: "0.0.0.0", ver: V4},
		{name: "v4 max", addr: "255.255.255.255", ver: V4},
		{name: "v6 loopback", addr: "::1", ver: V6},
		{name: "v6 doc", addr: "2001:db8::1", ver: V6},
		{name: "v6 max", addr: "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff", ver: V6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := netip.MustParseAddr(tt.addr)
			bi := AddrToBigInt(addr)
			back, err := AddrFromBigInt(bi, tt.ver)
			require.NoError(t, err)
			assert.Equal(t, addr, back)
		})
	}
}

func TestAddrFromBigInt_Errors(t *testing.T) {
	big33 := new(big.Int).Lsh(big.NewInt(1), 32) // 2^32，超出 IPv4
	_, err := AddrFromBigInt(big33, V4)
	assert.ErrorIs(t, err, ErrInvalidBigInt)

	big129 := new(big.Int).Lsh(big.NewInt(1), 128)
	_, err = AddrFromBigInt(big129, V6)
	assert.ErrorIs(t, err, ErrInvalidBigInt)

	_, err = AddrFromBigInt(big.NewInt(-1), V4)
	assert.ErrorIs(t, err, ErrInvalidBigInt)

	_, err = AddrFromBigInt(nil, V4)
	assert.ErrorIs(t, err, ErrInvalidBigInt)

	_, err = AddrFromBigInt(big.NewInt(1), V0)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestAddrAdd(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		delta   int64
		want    string
		wantErr bool
	}{
		{name: "v4 inc", addr: "192.168.1.100", delta: 1, want: "192.168.1.101"},
		{name: "v4 dec", addr: "192.168.1.100", delta: -1, want: "192.168.1.99"},
		{name: "v4 carry", addr: "192.168.1.255", delta: 1, want: "192.168.2.0"},
		{name: "v4 overflow", addr: "255.255.255.255", delta: 1, wantErr: true},
		{name: "v4 underflow", addr: "0.0.0.0", delta: -1, wantErr: true},
		{name: "v6 inc", addr: "2001:db8::ffff", delta: 1, want: "2001:db8::1:0"},
		{name: "v6 dec", addr: "2001:db8::1:0", delta: -1, want: "2001:db8::ffff"},
		{name: "v6 overflow", addr: "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff", delta: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddrAdd(netip.MustParseAddr(tt.addr), tt.delta)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAddrVersion(t *testing.T) {
	assert.Equal(t, V4, AddrVersion(netip.MustParseAddr("1.2.3.4")))
	assert.Equal(t, V4, AddrVersion(netip.MustParseAddr("::ffff:1.2.3.4")))
	assert.Equal(t, V6, AddrVersion(netip.MustParseAddr("2001:db8::")))
	assert.Equal(t, V0, AddrVersion(netip.Addr{}))
	assert.Equal(t, 32, V4.Bits())
	assert.Equal(t, 128, V6.Bits())
	assert.Equal(t, "IPv4", V4.String())
	assert.Equal(t, "IPv6", V6.String())
	assert.Equal(t, "unknown", V0.String())
}
