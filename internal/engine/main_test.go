package engine

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// High per-host rate so fetch tests don't wait on the limiter.
	Init(Config{HostRPS: 1000})
	os.Exit(m.Run())
}
