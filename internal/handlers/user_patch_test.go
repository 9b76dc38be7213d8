package handlers

import (
	"testing"

	"backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestApplyUserPatchLeavesAbsentFieldsUntouched(t *testing.T) {
	user := models.User{Name: "Ada", Email: "ada@example.com", Phone: "555"}

	update := applyUserPatch(&user, userPatchRequest{Name: strPtr("Grace")})

	if user.Name != "Grace" {
		t.Fatalf("expected name updated, got %q", user.Name)
	}
	if user.Email != "ada@example.com" || user.Phone != "555" {
		t.Fatal("expected absent fields to stay unchanged")
	}
	if _, ok := update["email"]; ok {
		t.Fatal("expected no email key in update for absent field")
	}
	if update["name"] != "Grace" {
		t.Fatalf("expected update to set name, got %v", update["name"])
	}
}

func TestApplyUserPatchExplicitEmptyClearsField(t *testing.T) {
	user := models.User{Phone: "555"}

	update := applyUserPatch(&user, userPatchRequest{Phone: strPtr("")})

	if user.Phone != "" {
		t.Fatalf("expected phone cleared, got %q", user.Phone)
	}
	if v, ok := update["phone"]; !ok || v != "" {
		t.Fatalf("expected update to set phone to empty string, got %v", update)
	}
}

func TestApplyUserPatchMergesAddressFields(t *testing.T) {
	user := models.User{Address: models.Address{City: "Berlin", Country: "DE"}}

	update := applyUserPatch(&user, userPatchRequest{
		Address: &addressPatch{City: strPtr("Hamburg"), Street: strPtr("Elbchaussee 1")},
	})

	if user.Address.City != "Hamburg" {
		t.Fatalf("expected city replaced, got %q", user.Address.City)
	}
	if user.Address.Street != "Elbchaussee 1" {
		t.Fatalf("expected street set, got %q", user.Address.Street)
	}
	if user.Address.Country != "DE" {
		t.Fatal("expected untouched address fields to survive the merge")
	}
	if _, ok := update["address"]; !ok {
		t.Fatal("expected merged address in update")
	}
}

func TestApplyUserPatchNormalizesEmail(t *testing.T) {
	user := models.User{}

	applyUserPatch(&user, userPatchRequest{Email: strPtr("  Ada@Example.COM ")})

	if user.Email != "ada@example.com" {
		t.Fatalf("expected lowercased trimmed email, got %q", user.Email)
	}
}

func TestApplyUserPatchEmptyPatch(t *testing.T) {
	user := models.User{Name: "Ada"}

	update := applyUserPatch(&user, userPatchRequest{})
	if len(update) != 0 {
		t.Fatalf("expected empty update, got %v", update)
	}
}
