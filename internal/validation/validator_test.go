package validation

import "testing"

type stepRequest struct {
	Step string `validate:"required,workflowstep"`
}

type contactRequest struct {
	Phone string `validate:"omitempty,phone"`
	Date  string `validate:"omitempty,date"`
}

type importRequest struct {
	URI string `validate:"required,gsuri"`
}

func TestWorkflowStep(t *testing.T) {
	v := New()
	if err := v.Struct(stepRequest{Step: "customer_meeting"}); err != nil {
		t.Fatalf("expected valid step, got %v", err)
	}
	err := v.Struct(stepRequest{Step: "meeting"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	errs := v.ValidationErrors(err)
	if len(errs) != 1 || errs[0].Tag() != "workflowstep" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestPhoneAndDate(t *testing.T) {
	v := New()
	if err := v.Struct(contactRequest{Phone: "+49 30 1234567", Date: "2026-03-15"}); err != nil {
		t.Fatalf("expected valid contact, got %v", err)
	}
	if err := v.Struct(contactRequest{Phone: "call me"}); err == nil {
		t.Fatalf("expected phone error")
	}
	if err := v.Struct(contactRequest{Date: "15.03.2026"}); err == nil {
		t.Fatalf("expected date error")
	}
}

func TestGSURI(t *testing.T) {
	v := New()
	if err := v.Struct(importRequest{URI: "gs://bucket/path/rfp.pdf"}); err != nil {
		t.Fatalf("expected valid uri, got %v", err)
	}
	for _, bad := range []string{"https://bucket/rfp.pdf", "gs://bucket", ""} {
		if err := v.Struct(importRequest{URI: bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
