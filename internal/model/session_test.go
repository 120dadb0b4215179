package model

import (
	"testing"
)

func strPtr(s string) *string { return &s }

func TestParseSessionState(t *testing.T) {
	reservation := Reservation{
		Cuisine:     strPtr("chinese"),
		PhoneNumber: strPtr("1234567890"),
	}
	encoded, err := reservation.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name            string
		attrs           map[string]string
		wantCurrent     bool
		wantContext     string
		wantExtraKeyVal [2]string
	}{
		{
			name:  "空の属性",
			attrs: nil,
		},
		{
			name: "進行中の予約と確認コンテキストを復元",
			attrs: map[string]string{
				"currentReservation":  encoded,
				"confirmationContext": ConfirmationContextAutoPopulate,
			},
			wantCurrent: true,
			wantContext: ConfirmationContextAutoPopulate,
		},
		{
			name: "壊れたJSONは値なしとして扱う",
			attrs: map[string]string{
				"currentReservation": "{not json",
			},
			wantCurrent: false,
		},
		{
			name: "未知のキーは素通しする",
			attrs: map[string]string{
				"upstreamTraceId": "abc-123",
			},
			wantExtraKeyVal: [2]string{"upstreamTraceId", "abc-123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := ParseSessionState(tt.attrs)
			if (state.CurrentReservation != nil) != tt.wantCurrent {
				t.Errorf("CurrentReservation present = %v, want %v", state.CurrentReservation != nil, tt.wantCurrent)
			}
			if state.ConfirmationContext != tt.wantContext {
				t.Errorf("ConfirmationContext = %q, want %q", state.ConfirmationContext, tt.wantContext)
			}
			if tt.wantExtraKeyVal[0] != "" {
				got := state.Attributes()[tt.wantExtraKeyVal[0]]
				if got != tt.wantExtraKeyVal[1] {
					t.Errorf("extra %q = %q, want %q", tt.wantExtraKeyVal[0], got, tt.wantExtraKeyVal[1])
				}
			}
		})
	}
}

func TestSessionStateRoundTrip(t *testing.T) {
	reservation := Reservation{
		Location:       strPtr("new york"),
		Cuisine:        strPtr("japanese"),
		DiningTime:     strPtr("12:30"),
		DiningDate:     strPtr("2026-09-02"),
		NumberOfPeople: strPtr("4"),
		PhoneNumber:    strPtr("1234567890"),
	}

	state := SessionState{
		CurrentReservation:  &reservation,
		ConfirmationContext: ConfirmationContextAutoPopulate,
		extra:               map[string]string{"foo": "bar"},
	}

	parsed := ParseSessionState(state.Attributes())

	if parsed.CurrentReservation == nil {
		t.Fatal("CurrentReservation was lost in the round trip")
	}
	if got := *parsed.CurrentReservation.Cuisine; got != "japanese" {
		t.Errorf("Cuisine = %q, want %q", got, "japanese")
	}
	if parsed.ConfirmationContext != ConfirmationContextAutoPopulate {
		t.Errorf("ConfirmationContext = %q, want %q", parsed.ConfirmationContext, ConfirmationContextAutoPopulate)
	}
	if got := parsed.Attributes()["foo"]; got != "bar" {
		t.Errorf("extra key foo = %q, want %q", got, "bar")
	}
	if parsed.LastConfirmedReservation != nil {
		t.Error("LastConfirmedReservation should be absent")
	}
}

func TestReservationFromSlots(t *testing.T) {
	slots := map[string]*string{
		SlotCuisine:     strPtr("thailand"),
		SlotDiningDate:  nil,
		SlotPhoneNumber: strPtr("0123456789"),
	}

	r := ReservationFromSlots(slots)

	if r.Cuisine == nil || *r.Cuisine != "thailand" {
		t.Errorf("Cuisine = %v, want thailand", r.Cuisine)
	}
	if r.DiningDate != nil {
		t.Error("DiningDate should be nil")
	}
	if r.Location != nil {
		t.Error("Location should be nil for a missing key")
	}
}

func TestEmptySlots(t *testing.T) {
	slots := EmptySlots()
	if len(slots) != len(SlotNames) {
		t.Fatalf("len(slots) = %d, want %d", len(slots), len(SlotNames))
	}
	for _, name := range SlotNames {
		value, ok := slots[name]
		if !ok {
			t.Errorf("slot %s is missing", name)
		}
		if value != nil {
			t.Errorf("slot %s = %v, want nil", name, value)
		}
	}
}
