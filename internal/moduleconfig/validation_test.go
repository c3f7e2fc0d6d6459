package moduleconfig

import (
	"strings"
	"testing"
)

func TestValidateRemoteHardware(t *testing.T) {
	tests := []struct {
		name       string
		config     RemoteHardwareConfig
		wantFields []string
	}{
		{
			name:   "zero value is valid",
			config: RemoteHardwareConfig{},
		},
		{
			name: "valid pins",
			config: RemoteHardwareConfig{
				Enabled: true,
				AvailablePins: []RemoteHardwarePin{
					{GpioPin: 12, Name: "relay", Type: PinTypeDigitalWrite},
					{GpioPin: 13, Name: "door", Type: PinTypeDigitalRead},
				},
			},
		},
		{
			name: "pin number out of range",
			config: RemoteHardwareConfig{
				AvailablePins: []RemoteHardwarePin{{GpioPin: 49, Name: "x", Type: PinTypeDigitalRead}},
			},
			wantFields: []string{"availablePins[0].gpioPin"},
		},
		{
			name: "name too long and bad type",
			config: RemoteHardwareConfig{
				AvailablePins: []RemoteHardwarePin{
					{GpioPin: 1, Name: "ok", Type: PinTypeDigitalRead},
					{GpioPin: 2, Name: "a-very-long-pin-name", Type: "ANALOG"},
				},
			},
			wantFields: []string{"availablePins[1].name", "availablePins[1].type"},
		},
		{
			name: "too many pins",
			config: RemoteHardwareConfig{
				AvailablePins: []RemoteHardwarePin{
					{GpioPin: 1, Name: "a", Type: PinTypeDigitalRead},
					{GpioPin: 2, Name: "b", Type: PinTypeDigitalRead},
					{GpioPin: 3, Name: "c", Type: PinTypeDigitalRead},
					{GpioPin: 4, Name: "d", Type: PinTypeDigitalRead},
					{GpioPin: 5, Name: "e", Type: PinTypeDigitalRead},
				},
			},
			wantFields: []string{"availablePins"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRemoteHardware(tt.config)
			got := errs.Fields()
			if len(got) != len(tt.wantFields) {
				t.Fatalf("Fields() = %v, want %v (errors: %v)", got, tt.wantFields, errs)
			}
			for i := range got {
				if got[i] != tt.wantFields[i] {
					t.Errorf("field[%d] = %q, want %q", i, got[i], tt.wantFields[i])
				}
			}
		})
	}
}

func TestFieldErrorsErr(t *testing.T) {
	if err := (FieldErrors{}).Err(RemoteHardware); err != nil {
		t.Errorf("empty FieldErrors.Err() = %v, want nil", err)
	}

	err := FieldErrors{"availablePins[0].name": "must be at most 14 characters"}.Err(RemoteHardware)
	if !IsValidationError(err) {
		t.Fatalf("Err() = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "availablePins[0].name") {
		t.Errorf("Err() = %q, should name the field", err.Error())
	}
}

func TestValidatePin(t *testing.T) {
	if err := ValidatePin(RemoteHardwarePin{GpioPin: 4, Name: "led", Type: PinTypeDigitalWrite}); err != nil {
		t.Errorf("ValidatePin(valid) = %v", err)
	}
	err := ValidatePin(RemoteHardwarePin{GpioPin: 4, Name: "led", Type: "PWM"})
	if err == nil || !strings.Contains(err.Error(), "must be one of UNKNOWN, DIGITAL_READ, DIGITAL_WRITE") {
		t.Errorf("ValidatePin(bad type) = %v", err)
	}
}
