package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEnumValidity(t *testing.T) {
	if !TicketInProgress.IsValid() || TicketStatus("nope").IsValid() {
		t.Error("TicketStatus.IsValid misclassified a value")
	}
	if !PriorityUrgent.IsValid() || TicketPriority("").IsValid() {
		t.Error("TicketPriority.IsValid misclassified a value")
	}
	if !RoleAdmin.IsValid() || Role("root").IsValid() {
		t.Error("Role.IsValid misclassified a value")
	}
	if !PlanEnterprise.IsValid() || Plan("gold").IsValid() {
		t.Error("Plan.IsValid misclassified a value")
	}
	if !TxnOnHold.IsValid() || TransactionStatus("done").IsValid() {
		t.Error("TransactionStatus.IsValid misclassified a value")
	}
	if !NotifyWarning.IsValid() || NotificationKind("alert").IsValid() {
		t.Error("NotificationKind.IsValid misclassified a value")
	}
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	u := User{
		ID:           "usr-abc",
		Email:        "amira@example.co.uk",
		Role:         RoleUser,
		PasswordHash: "$2a$10$secret",
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := out["PasswordHash"]; ok {
		t.Error("PasswordHash leaked into JSON output")
	}
	for k := range out {
		if k == "password_hash" {
			t.Error("password_hash leaked into JSON output")
		}
	}
}
