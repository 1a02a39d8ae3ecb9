//nolint:noctx // http.Get is fine in tests
package oauth

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallbackServer(t *testing.T) {
	server := NewCallbackServer(8080, "state-123")

	require.NotNil(t, server)
	assert.Equal(t, 8080, server.port)
	assert.Equal(t, "state-123", server.expectedState)
	assert.NotNil(t, server.codeChan)
	assert.NotNil(t, server.errChan)
	assert.Nil(t, server.server)
}

func TestCallbackServer_StartAndStop(t *testing.T) {
	port, err := FindAvailablePort(18080, 18180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "state")
	require.NoError(t, server.Start())
	assert.NotNil(t, server.listener)

	require.NoError(t, server.Stop())
}

func TestCallbackServer_ReceivesCode(t *testing.T) {
	port, err := FindAvailablePort(18080, 18180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "expected-state")
	require.NoError(t, server.Start())
	defer server.Stop()

	callback := fmt.Sprintf("http://127.0.0.1:%d/callback?code=auth-code-42&state=expected-state", port)
	resp, err := http.Get(callback)
	require.NoError(t, err)
	resp.Body.Close()

	code, err := server.WaitForCode(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "auth-code-42", code)
}

func TestCallbackServer_RejectsStateMismatch(t *testing.T) {
	port, err := FindAvailablePort(18080, 18180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "expected-state")
	require.NoError(t, server.Start())
	defer server.Stop()

	callback := fmt.Sprintf("http://127.0.0.1:%d/callback?code=auth-code&state=wrong", port)
	resp, err := http.Get(callback)
	require.NoError(t, err)
	resp.Body.Close()

	_, err = server.WaitForCode(2 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestCallbackServer_ReportsProviderError(t *testing.T) {
	port, err := FindAvailablePort(18080, 18180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "state")
	require.NoError(t, server.Start())
	defer server.Stop()

	q := url.Values{}
	q.Set("error", "access_denied")
	q.Set("error_description", "user declined")
	callback := fmt.Sprintf("http://127.0.0.1:%d/callback?%s", port, q.Encode())
	resp, err := http.Get(callback)
	require.NoError(t, err)
	resp.Body.Close()

	_, err = server.WaitForCode(2 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestCallbackServer_WaitForCodeTimeout(t *testing.T) {
	server := NewCallbackServer(0, "state")

	_, err := server.WaitForCode(50 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestCallbackServer_RedirectURI(t *testing.T) {
	server := NewCallbackServer(9321, "state")
	assert.Equal(t, "http://localhost:9321/callback", server.RedirectURI())
	assert.Equal(t, 9321, server.Port())
}

func TestGenerateState_Unique(t *testing.T) {
	a := GenerateState()
	b := GenerateState()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort(18500, 18600)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 18500)
	assert.LessOrEqual(t, port, 18600)
}
