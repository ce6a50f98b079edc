package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAssignee_Decode(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantName string
		wantUser bool
	}{
		{
			name:     "populated user",
			payload:  `{"title":"a","assignee":{"_id":"u1","name":"Alice","email":"a@x.io","role":"user"}}`,
			wantName: "Alice",
			wantUser: true,
		},
		{
			name:     "raw id",
			payload:  `{"title":"a","assignee":"64f0c2"}`,
			wantName: "64f0c2",
		},
		{
			name:    "absent",
			payload: `{"title":"a"}`,
		},
		{
			name:    "null",
			payload: `{"title":"a","assignee":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var issue Issue
			if err := json.Unmarshal([]byte(tt.payload), &issue); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := issue.Assignee.Name(); got != tt.wantName {
				t.Errorf("Name() = %q; want %q", got, tt.wantName)
			}
			gotUser := issue.Assignee != nil && issue.Assignee.User != nil
			if gotUser != tt.wantUser {
				t.Errorf("populated = %v; want %v", gotUser, tt.wantUser)
			}
		})
	}
}

func TestAssignee_EncodeKeepsShape(t *testing.T) {
	raw, err := json.Marshal(Assignee{Ref: "u7"})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"u7"` {
		t.Errorf("raw ref encoded as %s", raw)
	}

	raw, err = json.Marshal(Assignee{User: &User{ID: "u7", Name: "Bob"}})
	if err != nil {
		t.Fatal(err)
	}
	var back User
	if err := json.Unmarshal(raw, &back); err != nil || back.Name != "Bob" {
		t.Errorf("user encoded as %s (err %v)", raw, err)
	}
}

func TestIssueInput_OmitsEmptyAssignee(t *testing.T) {
	in := NewIssueInput()
	in.Title, in.Description = "Bug A", "desc"

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	if _, ok := fields["assignee"]; ok {
		t.Errorf("assignee present in %s", raw)
	}
	if fields["status"] != "Open" || fields["priority"] != "Low" {
		t.Errorf("defaults not applied: %s", raw)
	}
}

func TestIssue_ApplyDraft(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	issue := Issue{Title: "t", Description: "old", Status: StatusOpen, Priority: PriorityLow, CreatedAt: created}

	draft := issue.Draft()
	draft.Description = "new"
	draft.Status = StatusResolved

	got := issue.Apply(draft)
	if got.Description != "new" || got.Status != StatusResolved || got.Priority != PriorityLow {
		t.Errorf("Apply = %+v", got)
	}
	if got.Title != "t" || !got.CreatedAt.Equal(created) {
		t.Errorf("Apply touched immutable fields: %+v", got)
	}
}

func TestIssueCounts_FieldNames(t *testing.T) {
	var c IssueCounts
	if err := json.Unmarshal([]byte(`{"total":4,"open":2,"InProgress":1,"resolved":1}`), &c); err != nil {
		t.Fatal(err)
	}
	if c != (IssueCounts{Total: 4, Open: 2, InProgress: 1, Resolved: 1}) {
		t.Errorf("counts = %+v", c)
	}
}
