package validator

import (
	"errors"
	"gatepass/pkg/model"
	"gatepass/pkg/validation"
	"strings"
	"testing"
)

func validRegistration() *model.VisitorRegistration {
	return &model.VisitorRegistration{
		PrimaryVisitor: model.PrimaryVisitor{
			VisitorName: "Asha Rao",
			PhoneNumber: "+919812345678",
			Address:     "12 MG Road, Bengaluru",
			Reason:      "Interview",
			PhotoURL:    "https://cdn.example.com/p/asha.jpg",
		},
		Companions: []model.Companion{
			{Name: "Ravi"},
			{Name: "Meera", PhoneNumber: "+14155550123"},
		},
	}
}

func TestValidateRegistration(t *testing.T) {
	v := NewVisitorValidator()

	tests := []struct {
		name      string
		mutate    func(r *model.VisitorRegistration)
		wantField string
	}{
		{name: "valid", mutate: func(r *model.VisitorRegistration) {}},
		{name: "no companions", mutate: func(r *model.VisitorRegistration) { r.Companions = nil }},
		{
			name:      "missing visitor name",
			mutate:    func(r *model.VisitorRegistration) { r.VisitorName = "" },
			wantField: "visitorName",
		},
		{
			name:      "missing photo",
			mutate:    func(r *model.VisitorRegistration) { r.PhotoURL = "" },
			wantField: "photoUrl",
		},
		{
			name:      "phone not in E.164",
			mutate:    func(r *model.VisitorRegistration) { r.PhoneNumber = "9812345678" },
			wantField: "phoneNumber",
		},
		{
			name:      "companion without name",
			mutate:    func(r *model.VisitorRegistration) { r.Companions[0].Name = "" },
			wantField: "companions[0].name",
		},
		{
			name:      "companion reusing primary phone",
			mutate:    func(r *model.VisitorRegistration) { r.Companions[1].PhoneNumber = r.PhoneNumber },
			wantField: "companions[1].phoneNumber",
		},
		{
			name:      "companion with bad phone",
			mutate:    func(r *model.VisitorRegistration) { r.Companions[1].PhoneNumber = "+1" },
			wantField: "companions[1].phoneNumber",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistration()
			tt.mutate(reg)

			err := v.ValidateRegistration(reg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs validation.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := verrs.Details()[tt.wantField]; !ok {
				t.Errorf("expected an error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidateRegistration_TooManyCompanions(t *testing.T) {
	reg := validRegistration()
	reg.Companions = make([]model.Companion, 51)
	for i := range reg.Companions {
		reg.Companions[i].Name = "guest"
	}

	err := NewVisitorValidator().ValidateRegistration(reg)
	var verrs validation.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if msg := verrs.Details()["companions"]; msg == nil || !strings.Contains(msg.(string), "at most 50") {
		t.Errorf("unexpected details %v", verrs.Details())
	}
}
