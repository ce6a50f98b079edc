package validate

import (
	"testing"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

func TestStruct_IssueInput(t *testing.T) {
	tests := []struct {
		name       string
		in         models.IssueInput
		wantFields []string
	}{
		{
			name: "valid with defaults",
			in: func() models.IssueInput {
				in := models.NewIssueInput()
				in.Title, in.Description = "Bug A", "desc"
				return in
			}(),
		},
		{
			name:       "missing title and description",
			in:         models.NewIssueInput(),
			wantFields: []string{"title", "description"},
		},
		{
			name:       "unknown status",
			in:         models.IssueInput{Title: "t", Description: "d", Status: "Closed", Priority: models.PriorityHigh},
			wantFields: []string{"status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			errs, ok := err.(Errors)
			if !ok {
				t.Fatalf("expected Errors, got %T (%v)", err, err)
			}
			if len(errs) != len(tt.wantFields) {
				t.Errorf("got %d field errors (%v); want %d", len(errs), errs, len(tt.wantFields))
			}
			for _, f := range tt.wantFields {
				if Field(err, f) == "" {
					t.Errorf("no message for field %q in %v", f, errs)
				}
			}
		})
	}
}

func TestStruct_Messages(t *testing.T) {
	err := Struct(models.SignupRequest{Name: "Ann", Email: "not-an-email", Password: "123"})
	if got := Field(err, "email"); got != "email must be a valid email" {
		t.Errorf("email message = %q", got)
	}
	if got := Field(err, "password"); got != "password must be at least 6 characters" {
		t.Errorf("password message = %q", got)
	}
	if got := err.Error(); got != "email must be a valid email; password must be at least 6 characters" {
		t.Errorf("Error() = %q", got)
	}
}
