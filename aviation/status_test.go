// aviation/status_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"encoding/json"
	"errors"
	"testing"
)

var allStatuses = []TrackStatus{
	TrackStatusUnconcerned, TrackStatusPreInbound, TrackStatusInbound, TrackStatusInboundOffer,
	TrackStatusOutboundOffer, TrackStatusAccepted, TrackStatusIntruder,
}

func TestNextStatusPriority(t *testing.T) {
	tests := []struct {
		name    string
		signals TrackStatusSignals
		want    TrackStatus
	}{
		{"none", TrackStatusSignals{}, TrackStatusUnconcerned},
		{"pre-inbound", TrackStatusSignals{IsPreInbound: true}, TrackStatusPreInbound},
		{"inbound beats pre-inbound", TrackStatusSignals{IsPreInbound: true, IsInbound: true}, TrackStatusInbound},
		{"outbound offer beats inbound", TrackStatusSignals{IsInbound: true, HasOutboundOffer: true}, TrackStatusOutboundOffer},
		{"inbound offer beats outbound offer", TrackStatusSignals{HasInboundOffer: true, HasOutboundOffer: true}, TrackStatusInboundOffer},
		{"accepted beats offers", TrackStatusSignals{IsAccepted: true, HasInboundOffer: true, HasOutboundOffer: true}, TrackStatusAccepted},
		{"intruder beats accepted", TrackStatusSignals{IsIntruder: true, IsAccepted: true}, TrackStatusIntruder},
		{"all", TrackStatusSignals{true, true, true, true, true, true}, TrackStatusIntruder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The current status never changes the result.
			for _, cur := range allStatuses {
				if got := NextStatus(cur, tt.signals); got != tt.want {
					t.Errorf("NextStatus(%s, %+v) = %s, want %s", cur, tt.signals, got, tt.want)
				}
			}
		})
	}
}

func TestTrackUpdateStatus(t *testing.T) {
	tr := Track{ID: "T1", Status: TrackStatusAccepted}
	if !tr.UpdateStatus(TrackStatusSignals{}) {
		t.Errorf("expected change from ACCEPTED to UNCONCERNED")
	}
	if tr.Status != TrackStatusUnconcerned {
		t.Errorf("got %s, want UNCONCERNED", tr.Status)
	}
	if tr.UpdateStatus(TrackStatusSignals{}) {
		t.Errorf("expected no change")
	}
}

func TestTrackStatusText(t *testing.T) {
	for _, s := range allStatuses {
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		var back TrackStatus
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("%s: %v", b, err)
		}
		if back != s {
			t.Errorf("round trip of %s gave %s", s, back)
		}
	}

	if s, err := ParseTrackStatus("PRE_INBOUND"); err != nil || s != TrackStatusPreInbound {
		t.Errorf("ParseTrackStatus(PRE_INBOUND) = %s, %v", s, err)
	}
	if _, err := ParseTrackStatus("LOST"); !errors.Is(err, ErrInvalidTrackStatus) {
		t.Errorf("expected ErrInvalidTrackStatus, got %v", err)
	}
	if _, err := TrackStatus(42).MarshalText(); !errors.Is(err, ErrInvalidTrackStatus) {
		t.Errorf("expected ErrInvalidTrackStatus, got %v", err)
	}
	if s := TrackStatus(42).String(); s != "TrackStatus(42)" {
		t.Errorf("unexpected String() %q", s)
	}
}
