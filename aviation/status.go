// aviation/status.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
)

// TrackStatus is the controller-relevant lifecycle state of a track. It
// is always computed by NextStatus from the current signals and is never
// set directly, so that the rules live in one place.
type TrackStatus int

const (
	TrackStatusUnconcerned TrackStatus = iota
	TrackStatusPreInbound
	TrackStatusInbound
	TrackStatusInboundOffer
	TrackStatusOutboundOffer
	TrackStatusAccepted
	TrackStatusIntruder
)

var trackStatusNames = [...]string{
	TrackStatusUnconcerned:   "UNCONCERNED",
	TrackStatusPreInbound:    "PRE_INBOUND",
	TrackStatusInbound:       "INBOUND",
	TrackStatusInboundOffer:  "INBOUND_OFFER",
	TrackStatusOutboundOffer: "OUTBOUND_OFFER",
	TrackStatusAccepted:      "ACCEPTED",
	TrackStatusIntruder:      "INTRUDER",
}

func (s TrackStatus) String() string {
	if s < 0 || int(s) >= len(trackStatusNames) {
		return fmt.Sprintf("TrackStatus(%d)", int(s))
	}
	return trackStatusNames[s]
}

func ParseTrackStatus(str string) (TrackStatus, error) {
	for i, name := range trackStatusNames {
		if name == str {
			return TrackStatus(i), nil
		}
	}
	return TrackStatusUnconcerned, fmt.Errorf("%q: %w", str, ErrInvalidTrackStatus)
}

func (s TrackStatus) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(trackStatusNames) {
		return nil, fmt.Errorf("%d: %w", int(s), ErrInvalidTrackStatus)
	}
	return []byte(trackStatusNames[s]), nil
}

func (s *TrackStatus) UnmarshalText(b []byte) error {
	st, err := ParseTrackStatus(string(b))
	if err == nil {
		*s = st
	}
	return err
}

// TrackStatusSignals are the independent conditions, derived each tick
// from sector geometry, the handoff protocol and traffic rules, that
// determine a track's status. They carry no priority of their own.
type TrackStatusSignals struct {
	IsPreInbound     bool
	IsInbound        bool
	IsAccepted       bool
	IsIntruder       bool
	HasInboundOffer  bool
	HasOutboundOffer bool
}

// statusRules is evaluated in order and the first rule whose signal holds
// determines the status.
var statusRules = [...]struct {
	holds  func(TrackStatusSignals) bool
	status TrackStatus
}{
	{func(s TrackStatusSignals) bool { return s.IsIntruder }, TrackStatusIntruder},
	{func(s TrackStatusSignals) bool { return s.IsAccepted }, TrackStatusAccepted},
	{func(s TrackStatusSignals) bool { return s.HasInboundOffer }, TrackStatusInboundOffer},
	{func(s TrackStatusSignals) bool { return s.HasOutboundOffer }, TrackStatusOutboundOffer},
	{func(s TrackStatusSignals) bool { return s.IsInbound }, TrackStatusInbound},
	{func(s TrackStatusSignals) bool { return s.IsPreInbound }, TrackStatusPreInbound},
}

// NextStatus returns the status for a track given the current signals.
// The status is recomputed from scratch every tick: current is accepted
// so that callers don't need to special-case the first tick, but it never
// affects the result and every status is reachable from every other in
// one step.
func NextStatus(current TrackStatus, signals TrackStatusSignals) TrackStatus {
	for _, rule := range statusRules {
		if rule.holds(signals) {
			return rule.status
		}
	}
	return TrackStatusUnconcerned
}
