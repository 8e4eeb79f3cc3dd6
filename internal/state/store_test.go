package state

import (
	"errors"
	"testing"

	"github.com/emporia-game/peddler/internal/emporia"
)

func TestStore_FailedUpdateKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(&emporia.GameInfo{UserName: "merchant", Balance: 100}, nil)
	s.Update(nil, errors.New("network down"))
	s.Update(nil, errors.New("network down"))

	snap := s.Snapshot()
	if !snap.HasInfo || snap.Info.Balance != 100 {
		t.Fatalf("snapshot = %#v, want original data kept through failures", snap)
	}
	if snap.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", snap.ConsecutiveFailures)
	}
	if !snap.IsOffline() {
		t.Fatal("IsOffline = false after two consecutive failures")
	}
}

func TestStore_SuccessfulUpdateClearsFailures(t *testing.T) {
	var s Store

	s.Update(nil, errors.New("boom"))
	s.Update(&emporia.GameInfo{UserName: "merchant", Balance: 7}, nil)

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("snapshot = %#v, want failure state cleared", snap)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline = true after recovery")
	}
}

func TestStore_ResetClearsEverything(t *testing.T) {
	var s Store
	s.Update(&emporia.GameInfo{UserName: "merchant"}, nil)

	s.Reset()

	snap := s.Snapshot()
	if snap.HasInfo || !snap.LastUpdated.IsZero() {
		t.Fatalf("snapshot = %#v, want zero value after Reset", snap)
	}
}
