package memory

import (
	"testing"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/storage/storagetest"
)

func TestManager(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) interfaces.StorageManager {
		m := NewManager()
		t.Cleanup(func() { m.Close() })
		return m
	})
}

func TestBackend(t *testing.T) {
	if got := NewManager().Backend(); got != "memory" {
		t.Errorf("Backend() = %q, want memory", got)
	}
}
