package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/interfaces/http/handlers"
)

func TestServer_StartAndStop(t *testing.T) {
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(nil, nil),
		Mode:          "test",
	})
	srv := NewServer(config.ServerConfig{Port: 0}, router, nil)

	// Port 0 binds an ephemeral port; stop immediately after start returns.
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Stop(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_HandlerExposed(t *testing.T) {
	router := NewRouter(RouterConfig{Mode: "test"})
	srv := NewServer(config.ServerConfig{Port: 8080}, router, nil)

	assert.NotNil(t, srv.Handler())
	assert.Implements(t, (*http.Handler)(nil), srv.Handler())
}
