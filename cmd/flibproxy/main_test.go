package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	servers := []*http.Server{
		{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()},
		{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()},
	}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, logrus.New(), time.Second, servers...) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeReportsListenError(t *testing.T) {
	err := serve(context.Background(), logrus.New(), time.Second,
		&http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()})
	assert.Error(t, err)
}
