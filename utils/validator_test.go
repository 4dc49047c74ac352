package utils

import "testing"

type sampleRequest struct {
	Email       string `validate:"required,email"`
	Username    string `validate:"required,username"`
	CommunityID string `validate:"objectid"`
}

func TestValidateStructAccepts(t *testing.T) {
	req := sampleRequest{
		Email:       "dev@example.com",
		Username:    "dev_01",
		CommunityID: "0123456789abcdef01234567",
	}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructRejects(t *testing.T) {
	cases := []sampleRequest{
		{Email: "", Username: "dev_01"},                                                  // missing email
		{Email: "not-an-email", Username: "dev_01"},                                      // bad email
		{Email: "dev@example.com", Username: "x"},                                        // too short
		{Email: "dev@example.com", Username: "dev_01", CommunityID: "UPPERHEX0123456789ABCDEF"}, // bad id
	}
	for i, req := range cases {
		if err := ValidateStruct(&req); err == nil {
			t.Errorf("case %d: expected validation error, got nil", i)
		}
	}
}
