package validator

import "testing"

type registerPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
}

func TestValidateStructPasses(t *testing.T) {
	payload := registerPayload{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "longenough",
		OTP:      "123456",
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestValidateStructCollectsFailures(t *testing.T) {
	payload := registerPayload{Email: "not-an-email", OTP: "12"}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation failures")
	}

	failures, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	fields := make(map[string]bool, len(failures))
	for _, f := range failures {
		fields[f.Field] = true
	}

	for _, want := range []string{"name", "email", "password", "otp"} {
		if !fields[want] {
			t.Fatalf("expected failure for field %q, got %v", want, failures)
		}
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{{Field: "otp", Tag: "len", Param: "6"}}
	if errs.Error() != "otp failed on len=6" {
		t.Fatalf("unexpected message: %s", errs.Error())
	}
}
