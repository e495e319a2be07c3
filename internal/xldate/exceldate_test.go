package xldate

import "testing"

func TestFromOLE_LeapBugFeb29_1900(t *testing.T) {
	// Serial 60 is the fictitious "1900-02-29" Excel reports.
	ed := FromOLE(60, Epoch1900)
	if ed.Civil.Year != 1900 || ed.Civil.Month != 2 || ed.Civil.Day != 29 {
		t.Fatalf("serial 60 = %+v, want 1900-02-29", ed.Civil)
	}
	if ed.AdjustDaysPost != 1 {
		t.Errorf("AdjustDaysPost = %d, want 1", ed.AdjustDaysPost)
	}
}

func TestFromOLE_JustAfterLeapBug(t *testing.T) {
	// Serial 61 is 1900-03-01, the first real day after the bug.
	ed := FromOLE(61, Epoch1900)
	if ed.Civil.Year != 1900 || ed.Civil.Month != 3 || ed.Civil.Day != 1 {
		t.Fatalf("serial 61 = %+v, want 1900-03-01", ed.Civil)
	}
}

func TestFromOLE_ModernDate1900Epoch(t *testing.T) {
	// Serial 44197 is 2021-01-01 under the 1900 system (well documented).
	ed := FromOLE(44197, Epoch1900)
	if ed.Civil.Year != 2021 || ed.Civil.Month != 1 || ed.Civil.Day != 1 {
		t.Fatalf("serial 44197 = %+v, want 2021-01-01", ed.Civil)
	}
}

func TestFromOLE_1904Epoch(t *testing.T) {
	// Serial 0 under the 1904 system is 1904-01-01.
	ed := FromOLE(0, Epoch1904)
	if ed.Civil.Year != 1904 || ed.Civil.Month != 1 || ed.Civil.Day != 1 {
		t.Fatalf("serial 0 (1904) = %+v, want 1904-01-01", ed.Civil)
	}
}

func TestFromOLE_TimeOfDay(t *testing.T) {
	ed := FromOLE(44197.5, Epoch1900) // noon
	if ed.Civil.Hour != 12 || ed.Civil.Minute != 0 || ed.Civil.Second != 0 {
		t.Fatalf("time of day = %02d:%02d:%02d, want 12:00:00", ed.Civil.Hour, ed.Civil.Minute, ed.Civil.Second)
	}
}

func TestToOLE_RoundTrip(t *testing.T) {
	for _, serial := range []float64{1, 59, 60, 61, 100, 25569, 44197.25, 44197.75} {
		ed := FromOLE(serial, Epoch1900)
		if got := ed.ToOLE(); got != serial {
			t.Errorf("round trip for %v: ToOLE() = %v", serial, got)
		}
	}
}

func TestFromOLE_1904RoundTrip(t *testing.T) {
	for _, serial := range []float64{0, 1, 365, 40000.5} {
		ed := FromOLE(serial, Epoch1904)
		if got := ed.ToOLE(); got != serial {
			t.Errorf("1904 round trip for %v: ToOLE() = %v", serial, got)
		}
		if ed.Epoch() != Epoch1904 {
			t.Errorf("Epoch() = %v, want Epoch1904", ed.Epoch())
		}
	}
}
