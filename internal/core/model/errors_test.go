package model

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("%w: busId is required", ErrInvalidInput), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: bus not found", ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: bus already exists", ErrConflict), http.StatusConflict},
		{"transient", fmt.Errorf("%w: dial tcp", ErrTransient), http.StatusServiceUnavailable},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFixValidate(t *testing.T) {
	tests := []struct {
		name    string
		fix     LocationFix
		wantErr bool
	}{
		{"valid", LocationFix{BusID: "KSRTC_1", Lat: 9.93, Lng: 76.26}, false},
		{"missing busId", LocationFix{Lat: 9.93, Lng: 76.26}, true},
		{"lat too high", LocationFix{BusID: "KSRTC_1", Lat: 90.1, Lng: 76}, true},
		{"lng too low", LocationFix{BusID: "KSRTC_1", Lat: 9, Lng: -180.1}, true},
		{"negative speed", LocationFix{BusID: "KSRTC_1", Lat: 9, Lng: 76, Speed: -5}, true},
		{"heading over 360", LocationFix{BusID: "KSRTC_1", Lat: 9, Lng: 76, Heading: 361}, true},
		{"boundary coordinates", LocationFix{BusID: "KSRTC_1", Lat: -90, Lng: 180}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fix.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestFixApplyDefaults(t *testing.T) {
	fix := LocationFix{BusID: "KSRTC_42", Lat: 9, Lng: 76}
	fix.ApplyDefaults()

	if fix.DriverID != "unknown" {
		t.Errorf("driverId = %q, want unknown", fix.DriverID)
	}
	if fix.RouteNumber != "N/A" {
		t.Errorf("routeNumber = %q, want N/A", fix.RouteNumber)
	}
	if fix.BusNumber != "KSRTC_42" {
		t.Errorf("busNumber = %q, want busId fallback", fix.BusNumber)
	}

	// Supplied values are preserved.
	fix2 := LocationFix{BusID: "KSRTC_1", BusNumber: "KL15A1", RouteNumber: "7", DriverID: "d1"}
	fix2.ApplyDefaults()
	if fix2.BusNumber != "KL15A1" || fix2.RouteNumber != "7" || fix2.DriverID != "d1" {
		t.Errorf("ApplyDefaults() overwrote supplied fields: %+v", fix2)
	}
}
