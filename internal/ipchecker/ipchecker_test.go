package ipchecker

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	assert.True(t, checker.Check(net.ParseIP("10.1.2.3")))
	assert.False(t, checker.Check(net.ParseIP("192.168.1.1")))
	assert.False(t, checker.Check(nil))
}

func TestDisabledCheckerRefusesEveryone(t *testing.T) {
	checker, err := New("")
	require.NoError(t, err)

	assert.False(t, checker.Check(net.ParseIP("127.0.0.1")))
}

func TestNewRejectsBadCIDR(t *testing.T) {
	_, err := New("not-a-cidr")
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "x_real_ip_preferred",
			headers:    map[string]string{"X-Real-IP": "10.0.0.1", "X-Forwarded-For": "10.0.0.2"},
			remoteAddr: "192.168.0.1:1234",
			expected:   "10.0.0.1",
		},
		{
			name:       "first_forwarded_for_entry",
			headers:    map[string]string{"X-Forwarded-For": "10.0.0.2, 10.0.0.3"},
			remoteAddr: "192.168.0.1:1234",
			expected:   "10.0.0.2",
		},
		{
			name:       "remote_addr_fallback",
			remoteAddr: "192.168.0.1:1234",
			expected:   "192.168.0.1",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/urls/all", nil)
			req.RemoteAddr = testCase.remoteAddr
			for name, value := range testCase.headers {
				req.Header.Set(name, value)
			}

			ip, err := checker.ClientIP(req)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, ip.String())
		})
	}
}
