package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestCommitQueryIsSingleInsertWithoutConflictClause(t *testing.T) {
	query := strings.ToLower(commitLeadQuery)

	if !strings.Contains(query, "insert into leads") {
		t.Fatal("commit must insert into leads")
	}
	for _, forbidden := range []string{"on conflict", "select id from leads", "where phone"} {
		if strings.Contains(query, forbidden) {
			t.Fatalf("commit query must rely on the unique constraint, found %q", forbidden)
		}
	}
	if !strings.Contains(query, "returning id") {
		t.Fatal("commit must return the generated id")
	}
}

func TestAssignQueryIsConditional(t *testing.T) {
	query := strings.ToLower(assignIfUnassignedQuery)

	if !strings.Contains(query, "assigned_to is null") {
		t.Fatal("assignment must only write unassigned leads")
	}
}

func TestCountOpenLeadsExcludesClosedStatuses(t *testing.T) {
	query := strings.ToLower(countOpenLeadsByWorkerQuery)

	for _, fragment := range []string{"'closed-won'", "'closed-lost'", "group by assigned_to"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected fragment %q", fragment)
		}
	}
}

func TestMapCommitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "phone unique violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "leads_phone_key"},
			want: ErrDuplicatePhone,
		},
		{
			name: "campaign fk",
			err:  fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503", ConstraintName: "leads_campaign_id_fkey"}),
			want: ErrUnknownCampaign,
		},
		{
			name: "assignee fk",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "leads_assigned_to_fkey"},
			want: ErrUnknownAssignee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapCommitError(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapCommitErrorKeepsUnrelatedFailures(t *testing.T) {
	pkey := &pgconn.PgError{Code: "23505", ConstraintName: "leads_pkey"}
	got := mapCommitError(pkey)

	if errors.Is(got, ErrDuplicatePhone) {
		t.Fatal("only the phone constraint signals a duplicate lead")
	}
	var pgErr *pgconn.PgError
	if !errors.As(got, &pgErr) {
		t.Fatal("underlying error must stay inspectable")
	}
}
